// Package engine is the process-level façade over the storage stack: it owns
// the disk manager, opens each table with its own buffer pool, and exposes
// record-level operations to the CLI and embedding callers.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/savrasov/HeapDB/src"
	"github.com/savrasov/HeapDB/src/bufferpool"
	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/disk"
	"github.com/savrasov/HeapDB/src/storage/record"
)

const tracerName = "heapdb/engine"

type Config struct {
	PoolCapacity int
	Strategy     bufferpool.Strategy
}

func DefaultConfig() Config {
	return Config{
		PoolCapacity: record.DefaultPoolCapacity,
		Strategy:     bufferpool.LRU,
	}
}

// Engine keeps at most one open Table per name. Access to a given table must
// be serialised by the caller; distinct tables are independent.
type Engine struct {
	log    src.Logger
	rm     *record.Manager
	tracer trace.Tracer

	tables map[string]*record.Table
}

func New(fs afero.Fs, cfg Config, log src.Logger) *Engine {
	diskMgr := disk.NewManager(fs)

	rm := record.NewManager(
		diskMgr,
		record.WithLogger(log),
		record.WithPoolCapacity(cfg.PoolCapacity),
		record.WithStrategy(cfg.Strategy),
		record.WithPoolOptions(bufferpool.WithLogger(log), bufferpool.WithMeter(otel.Meter(tracerName))),
	)

	return &Engine{
		log:    log,
		rm:     rm,
		tracer: otel.Tracer(tracerName),
		tables: make(map[string]*record.Table),
	}
}

// Close closes every table that is still open, reporting the first failure
// after attempting all of them.
func (e *Engine) Close() error {
	var firstErr error
	for name, t := range e.tables {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		delete(e.tables, name)
	}

	return firstErr
}

func (e *Engine) CreateTable(ctx context.Context, name string, schema *storage.Schema) error {
	_, span := e.tracer.Start(ctx, "CreateTable", trace.WithAttributes(attribute.String("table", name)))
	defer span.End()

	return e.rm.CreateTable(name, schema)
}

// DropTable closes the table when open, then destroys its page file.
func (e *Engine) DropTable(ctx context.Context, name string) error {
	_, span := e.tracer.Start(ctx, "DropTable", trace.WithAttributes(attribute.String("table", name)))
	defer span.End()

	if t, ok := e.tables[name]; ok {
		if err := t.Close(); err != nil {
			return err
		}

		delete(e.tables, name)
	}

	return e.rm.DeleteTable(name)
}

// Table returns the open table, opening it on first use.
func (e *Engine) Table(ctx context.Context, name string) (*record.Table, error) {
	if t, ok := e.tables[name]; ok {
		return t, nil
	}

	_, span := e.tracer.Start(ctx, "OpenTable", trace.WithAttributes(attribute.String("table", name)))
	defer span.End()

	t, err := e.rm.OpenTable(name)
	if err != nil {
		return nil, err
	}

	e.tables[name] = t

	return t, nil
}

// CloseTable flushes and closes one table.
func (e *Engine) CloseTable(name string) error {
	t, ok := e.tables[name]
	if !ok {
		return fmt.Errorf("%w: table %q is not open", storage.ErrInvalidParameter, name)
	}

	delete(e.tables, name)

	return t.Close()
}

func (e *Engine) Insert(ctx context.Context, table string, rec *storage.Record) error {
	ctx, span := e.tracer.Start(ctx, "Insert", trace.WithAttributes(attribute.String("table", table)))
	defer span.End()

	t, err := e.Table(ctx, table)
	if err != nil {
		return err
	}

	return t.Insert(rec)
}

func (e *Engine) Get(ctx context.Context, table string, rid storage.RID) (*storage.Record, error) {
	ctx, span := e.tracer.Start(ctx, "Get", trace.WithAttributes(attribute.String("table", table)))
	defer span.End()

	t, err := e.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	return t.Get(rid)
}

func (e *Engine) Delete(ctx context.Context, table string, rid storage.RID) error {
	ctx, span := e.tracer.Start(ctx, "Delete", trace.WithAttributes(attribute.String("table", table)))
	defer span.End()

	t, err := e.Table(ctx, table)
	if err != nil {
		return err
	}

	return t.Delete(rid)
}

func (e *Engine) Update(ctx context.Context, table string, rec *storage.Record) error {
	ctx, span := e.tracer.Start(ctx, "Update", trace.WithAttributes(attribute.String("table", table)))
	defer span.End()

	t, err := e.Table(ctx, table)
	if err != nil {
		return err
	}

	return t.Update(rec)
}

// ScanAll runs the condition over the whole table and returns the matching
// records.
func (e *Engine) ScanAll(
	ctx context.Context,
	table string,
	cond record.Condition,
) ([]*storage.Record, error) {
	ctx, span := e.tracer.Start(ctx, "ScanAll", trace.WithAttributes(attribute.String("table", table)))
	defer span.End()

	t, err := e.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	scan, err := t.StartScan(cond)
	if err != nil {
		return nil, err
	}
	defer scan.Close()

	var out []*storage.Record
	for {
		rec, err := scan.Next()
		if err != nil {
			if errors.Is(err, storage.ErrNoMoreTuples) {
				return out, nil
			}

			return nil, err
		}

		out = append(out, rec)
	}
}
