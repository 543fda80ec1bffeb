package record

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/savrasov/HeapDB/src"
	"github.com/savrasov/HeapDB/src/bufferpool"
	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/disk"
	"github.com/savrasov/HeapDB/src/storage/page"
)

// DefaultPoolCapacity is the buffer-pool size a table opens with unless the
// manager is configured otherwise.
const DefaultPoolCapacity = 100

// Manager creates, opens and destroys tables. Each table is one page file;
// each open table owns its own buffer pool, so any number of tables can be
// open at once.
type Manager struct {
	disk         *disk.Manager
	log          src.Logger
	poolCapacity int
	strategy     bufferpool.Strategy
	poolOpts     []bufferpool.Option
}

type ManagerOption func(*Manager)

func WithLogger(log src.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

func WithPoolCapacity(capacity int) ManagerOption {
	return func(m *Manager) {
		m.poolCapacity = capacity
	}
}

func WithStrategy(s bufferpool.Strategy) ManagerOption {
	return func(m *Manager) {
		m.strategy = s
	}
}

func WithPoolOptions(opts ...bufferpool.Option) ManagerOption {
	return func(m *Manager) {
		m.poolOpts = opts
	}
}

func NewManager(diskMgr *disk.Manager, opts ...ManagerOption) *Manager {
	m := &Manager{
		disk:         diskMgr,
		log:          src.NoopLogger(),
		poolCapacity: DefaultPoolCapacity,
		strategy:     bufferpool.LRU,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CreateTable creates the page file and writes the schema plus zeroed
// counters to page 0. The table is not open afterwards.
func (m *Manager) CreateTable(name string, schema *storage.Schema) error {
	if name == "" || schema == nil {
		return fmt.Errorf("%w: create table %q", storage.ErrInvalidParameter, name)
	}

	recordSize := schema.RecordSize()
	if recordSize <= 0 || recordSize > disk.PageSize {
		return fmt.Errorf(
			"%w: table %q with record size %d",
			storage.ErrInvalidParameter, name, recordSize,
		)
	}

	if err := m.disk.CreatePageFile(name); err != nil {
		return fmt.Errorf("creating table %q: %w", name, err)
	}

	buf := make([]byte, disk.PageSize)
	meta := tableMeta{tupleCount: 0, firstFreePage: 1, schema: schema}
	if err := encodeTableMeta(buf, meta); err != nil {
		return err
	}

	fh, err := m.disk.OpenPageFile(name)
	if err != nil {
		return fmt.Errorf("opening fresh table %q: %w", name, err)
	}

	if err := fh.WriteBlock(0, buf); err != nil {
		_ = fh.Close()
		return fmt.Errorf("writing metadata of %q: %w", name, err)
	}

	if err := fh.Close(); err != nil {
		return err
	}

	m.log.Infof("created table %q (%d attributes, record size %d)",
		name, schema.NumAttrs(), recordSize)

	return nil
}

// DeleteTable destroys the table's page file.
func (m *Manager) DeleteTable(name string) error {
	return m.disk.DestroyPageFile(name)
}

// Table is one open table: its buffer pool, the schema reconstructed from
// page 0, and the cached counters. Access must be serialised by the caller.
type Table struct {
	Name   string
	Schema *storage.Schema

	id   uuid.UUID
	pool *bufferpool.Pool
	log  src.Logger

	tupleCount    int
	firstFreePage int
	recordSize    int
	slotsPerPage  int
}

// OpenTable initialises a buffer pool on the table's file and reconstructs
// the schema and counters from page 0.
func (m *Manager) OpenTable(name string) (*Table, error) {
	pool, err := bufferpool.New(m.disk, name, m.poolCapacity, m.strategy, m.poolOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening table %q: %w", name, err)
	}

	h, err := pool.Pin(0)
	if err != nil {
		_ = pool.Shutdown()
		return nil, fmt.Errorf("pinning metadata page of %q: %w", name, err)
	}

	meta, err := decodeTableMeta(h.Data)
	if err != nil {
		_ = pool.Unpin(h)
		_ = pool.Shutdown()
		return nil, fmt.Errorf("decoding metadata of %q: %w", name, err)
	}

	if err := pool.Unpin(h); err != nil {
		_ = pool.Shutdown()
		return nil, err
	}

	// Write-back is a no-op here: the metadata frame is still clean.
	if err := pool.ForceFlush(); err != nil {
		_ = pool.Shutdown()
		return nil, err
	}

	recordSize := meta.schema.RecordSize()

	t := &Table{
		Name:          name,
		Schema:        meta.schema,
		id:            uuid.New(),
		pool:          pool,
		log:           m.log,
		tupleCount:    meta.tupleCount,
		firstFreePage: meta.firstFreePage,
		recordSize:    recordSize,
		slotsPerPage:  disk.PageSize / recordSize,
	}

	m.log.Infof("opened table %q id=%s tuples=%d firstFreePage=%d",
		name, t.id, t.tupleCount, t.firstFreePage)

	return t, nil
}

// Close shuts the table's buffer pool down, flushing every dirty frame.
func (t *Table) Close() error {
	if t == nil || t.pool == nil {
		return storage.ErrInvalidParameter
	}

	if err := t.pool.Shutdown(); err != nil {
		return fmt.Errorf("closing table %q: %w", t.Name, err)
	}

	t.pool = nil

	return nil
}

// Pool exposes the table's buffer pool for statistics.
func (t *Table) Pool() *bufferpool.Pool {
	return t.pool
}

// NumTuples returns the cached live-record count, or -1 when the table is not
// open.
func (t *Table) NumTuples() int {
	if t == nil || t.pool == nil {
		return -1
	}

	return t.tupleCount
}

func (t *Table) SlotsPerPage() int {
	return t.slotsPerPage
}

func (t *Table) RecordSize() int {
	return t.recordSize
}

func (t *Table) validateRID(rid storage.RID) error {
	if rid.Page < 1 || rid.Slot < 0 || rid.Slot >= t.slotsPerPage {
		return fmt.Errorf("%w: rid %s", storage.ErrInvalidParameter, rid)
	}

	return nil
}

// persistCounters rewrites tupleCount and firstFreePage on page 0 through a
// read-modify-write of the pinned frame. Any failure is surfaced as a hard
// error; callers roll the in-memory counters back.
func (t *Table) persistCounters() error {
	h, err := t.pool.Pin(0)
	if err != nil {
		return fmt.Errorf("pinning metadata page of %q: %w", t.Name, err)
	}

	encodeCounters(h.Data, t.tupleCount, t.firstFreePage)

	if err := t.pool.MarkDirty(h); err != nil {
		_ = t.pool.Unpin(h)
		return err
	}

	return t.pool.Unpin(h)
}

// Insert claims the first free slot at or after firstFreePage, writes the
// record bytes and persists the updated counters. The record's ID is set to
// the claimed slot. Probing may grow the file through the pool.
func (t *Table) Insert(rec *storage.Record) error {
	if t == nil || t.pool == nil || rec == nil || len(rec.Data) != t.recordSize {
		return fmt.Errorf("%w: insert into %q", storage.ErrInvalidParameter, t.Name)
	}

	pageNum := t.firstFreePage

	for {
		h, err := t.pool.Pin(pageNum)
		if err != nil {
			return fmt.Errorf("probing page %d of %q: %w", pageNum, t.Name, err)
		}

		hp := page.NewHeapPage(h.Data, t.recordSize)
		slot := hp.FirstFreeSlot()
		if slot.IsNone() {
			if err := t.pool.Unpin(h); err != nil {
				return err
			}

			pageNum++

			continue
		}

		s := slot.Unwrap()
		raw := hp.Slot(s)
		raw[0] = storage.SlotOccupied
		copy(raw[1:], rec.Data[1:])

		if err := t.pool.MarkDirty(h); err != nil {
			_ = t.pool.Unpin(h)
			return err
		}
		if err := t.pool.Unpin(h); err != nil {
			return err
		}

		rec.ID = storage.RID{Page: pageNum, Slot: s}

		break
	}

	prevCount, prevFree := t.tupleCount, t.firstFreePage

	t.tupleCount++
	if rec.ID.Page > t.firstFreePage {
		t.firstFreePage = rec.ID.Page
	}

	if err := t.persistCounters(); err != nil {
		t.tupleCount, t.firstFreePage = prevCount, prevFree
		return err
	}

	t.log.Debugf("table %q: inserted %s, tuples=%d", t.Name, rec.ID, t.tupleCount)

	return nil
}

// Delete frees the slot's tombstone and lowers firstFreePage to encourage
// reuse of the reclaimed slot.
func (t *Table) Delete(rid storage.RID) error {
	if t == nil || t.pool == nil {
		return storage.ErrInvalidParameter
	}
	if err := t.validateRID(rid); err != nil {
		return err
	}

	h, err := t.pool.Pin(rid.Page)
	if err != nil {
		return fmt.Errorf("pinning page %d of %q: %w", rid.Page, t.Name, err)
	}

	hp := page.NewHeapPage(h.Data, t.recordSize)
	hp.SetTombstone(rid.Slot, storage.SlotFree)

	if err := t.pool.MarkDirty(h); err != nil {
		_ = t.pool.Unpin(h)
		return err
	}
	if err := t.pool.Unpin(h); err != nil {
		return err
	}

	prevCount, prevFree := t.tupleCount, t.firstFreePage

	if t.tupleCount > 0 {
		t.tupleCount--
	}
	if rid.Page < t.firstFreePage {
		t.firstFreePage = rid.Page
	}

	if err := t.persistCounters(); err != nil {
		t.tupleCount, t.firstFreePage = prevCount, prevFree
		return err
	}

	t.log.Debugf("table %q: deleted %s, tuples=%d", t.Name, rid, t.tupleCount)

	return nil
}

// Update overwrites the slot named by the record's ID. The tombstone is
// written as occupied regardless of its prior state.
func (t *Table) Update(rec *storage.Record) error {
	if t == nil || t.pool == nil || rec == nil || len(rec.Data) != t.recordSize {
		return fmt.Errorf("%w: update in %q", storage.ErrInvalidParameter, t.Name)
	}
	if err := t.validateRID(rec.ID); err != nil {
		return err
	}

	h, err := t.pool.Pin(rec.ID.Page)
	if err != nil {
		return fmt.Errorf("pinning page %d of %q: %w", rec.ID.Page, t.Name, err)
	}

	hp := page.NewHeapPage(h.Data, t.recordSize)
	raw := hp.Slot(rec.ID.Slot)
	raw[0] = storage.SlotOccupied
	copy(raw[1:], rec.Data[1:])

	if err := t.pool.MarkDirty(h); err != nil {
		_ = t.pool.Unpin(h)
		return err
	}

	return t.pool.Unpin(h)
}

// Get copies the whole slot, tombstone included, into a fresh record.
func (t *Table) Get(rid storage.RID) (*storage.Record, error) {
	if t == nil || t.pool == nil {
		return nil, storage.ErrInvalidParameter
	}
	if err := t.validateRID(rid); err != nil {
		return nil, err
	}

	h, err := t.pool.Pin(rid.Page)
	if err != nil {
		return nil, fmt.Errorf("pinning page %d of %q: %w", rid.Page, t.Name, err)
	}

	hp := page.NewHeapPage(h.Data, t.recordSize)
	if hp.IsFree(rid.Slot) {
		if err := t.pool.Unpin(h); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %s in %q", storage.ErrNoTupleWithGivenRID, rid, t.Name)
	}

	rec := &storage.Record{
		ID:   rid,
		Data: append([]byte(nil), hp.Slot(rid.Slot)...),
	}

	if err := t.pool.Unpin(h); err != nil {
		return nil, err
	}

	return rec, nil
}
