package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants"

	"github.com/savrasov/HeapDB/src/storage"
)

// LoadBatches inserts each table's records through a shared worker pool. One
// worker handles one table end to end, so access to a single table stays
// serialised while distinct tables load in parallel.
func (e *Engine) LoadBatches(
	ctx context.Context,
	batches map[string][]*storage.Record,
	workers int,
) error {
	ctx, span := e.tracer.Start(ctx, "LoadBatches")
	defer span.End()

	if workers <= 0 {
		workers = 1
	}

	// Tables are opened up front: the engine's table map is not safe for
	// concurrent mutation, the per-table inserts below are.
	for name := range batches {
		if _, err := e.Table(ctx, name); err != nil {
			return err
		}
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("sizing loader pool: %w", err)
	}
	defer pool.Release()

	var (
		wg sync.WaitGroup

		mu       sync.Mutex
		firstErr error
	)

	for name, recs := range batches {
		wg.Add(1)

		err := pool.Submit(func() error {
			defer wg.Done()

			if err := e.loadOne(ctx, name, recs); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}

			return nil
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submitting batch for %q: %w", name, err)
		}
	}

	wg.Wait()

	return firstErr
}

func (e *Engine) loadOne(ctx context.Context, table string, recs []*storage.Record) error {
	t, err := e.Table(ctx, table)
	if err != nil {
		return err
	}

	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.Insert(rec); err != nil {
			return fmt.Errorf("batch insert %d into %q: %w", i, table, err)
		}
	}

	e.log.Infof("loaded %d records into %q", len(recs), table)

	return nil
}
