package record

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/page"
)

// Condition is the predicate a scan evaluates against each live record. The
// scanner treats a BOOL true result as a match, any other result as a
// non-match, and an error as a hard scan failure. Implementations live in
// src/query; tests substitute trivial predicates.
type Condition interface {
	Eval(rec *storage.Record, schema *storage.Schema) (*storage.Value, error)
}

// Scan walks the table's data pages in (page, slot) order and yields records
// matching its condition. A scan holds no pins between Next calls.
type Scan struct {
	table *Table
	cond  Condition

	id     uuid.UUID
	cursor storage.RID

	// steps guards against inconsistent metadata sending the cursor in
	// circles; exhaustion reads as end-of-scan.
	steps  int
	closed bool
}

// StartScan sizes the safety step budget from the table's current
// firstFreePage and positions the cursor before the first slot of page 1.
// The page bound itself is read from the table on every Next call.
func (t *Table) StartScan(cond Condition) (*Scan, error) {
	if t == nil || t.pool == nil || t.Schema == nil {
		return nil, fmt.Errorf("%w: scan without open table", storage.ErrScanConditionNotFound)
	}
	if cond == nil {
		return nil, fmt.Errorf("%w: nil condition", storage.ErrScanConditionNotFound)
	}

	s := &Scan{
		table:  t,
		cond:   cond,
		id:     uuid.New(),
		cursor: storage.RID{Page: 1, Slot: -1},
		steps:  (t.firstFreePage+2)*t.slotsPerPage + 2,
	}

	t.log.Debugf("table %q: scan %s started, tuples=%d", t.Name, s.id, t.tupleCount)

	return s, nil
}

// Next advances to the next live record matching the condition. It returns
// ErrNoMoreTuples once the cursor passes the last page the table may populate.
func (s *Scan) Next() (*storage.Record, error) {
	if s == nil || s.closed {
		return nil, storage.ErrNoMoreTuples
	}

	t := s.table

	for ; s.steps > 0; s.steps-- {
		s.cursor.Slot++
		if s.cursor.Slot >= t.slotsPerPage {
			s.cursor.Slot = 0
			s.cursor.Page++
		}

		if s.cursor.Page > t.firstFreePage+1 {
			return nil, storage.ErrNoMoreTuples
		}

		h, err := t.pool.Pin(s.cursor.Page)
		if err != nil {
			return nil, fmt.Errorf("scan pinning page %d of %q: %w", s.cursor.Page, t.Name, err)
		}

		hp := page.NewHeapPage(h.Data, t.recordSize)
		if hp.IsFree(s.cursor.Slot) {
			if err := t.pool.Unpin(h); err != nil {
				return nil, err
			}

			continue
		}

		rec := &storage.Record{
			ID:   s.cursor,
			Data: append([]byte(nil), hp.Slot(s.cursor.Slot)...),
		}

		val, evalErr := s.cond.Eval(rec, t.Schema)

		if err := t.pool.Unpin(h); err != nil {
			return nil, err
		}
		if evalErr != nil {
			return nil, fmt.Errorf("scan predicate on %s: %w", rec.ID, evalErr)
		}

		if val != nil && val.Type == storage.TypeBool && val.Bool {
			return rec, nil
		}
	}

	return nil, storage.ErrNoMoreTuples
}

// Close releases the scan context. It never touches the table's counters.
func (s *Scan) Close() error {
	if s == nil {
		return storage.ErrInvalidParameter
	}

	s.closed = true

	return nil
}
