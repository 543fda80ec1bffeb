package bufferpool

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/savrasov/HeapDB/src"
	"github.com/savrasov/HeapDB/src/pkg/assert"
	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/disk"
)

// PageHandle is a non-owning view into a pinned frame's buffer. It stays
// valid until the matching Unpin; the caller must not touch Data afterwards.
type PageHandle struct {
	PageNum int
	Data    []byte
}

// frame is one cached page. Frames are kept in insertion order; eviction
// reuses a frame in place, so the order never changes after load.
type frame struct {
	data      []byte
	pageNum   int
	dirty     bool
	pinCount  int
	refCount  int
	lastTouch int64
	refBit    bool
}

// Pool caches up to capacity pages of a single page file. A page resides in
// at most one frame; a frame with pinCount>0 is never evicted; a dirty frame
// is written back before its buffer is reused. Access to one Pool must be
// serialised by the caller.
type Pool struct {
	fileName string
	capacity int
	strategy Strategy

	frames   []*frame
	replacer replacer
	tick     int64

	fh  *disk.FileHandle
	mgr *disk.Manager

	reads  int
	writes int

	log src.Logger

	ioReads  metric.Int64Counter
	ioWrites metric.Int64Counter
	hits     metric.Int64Counter
}

type Option func(*Pool)

func WithLogger(log src.Logger) Option {
	return func(p *Pool) {
		p.log = log
	}
}

// WithMeter mirrors the pool's I/O and hit counters to OpenTelemetry
// instruments. The accessors keep reporting plain ints either way.
func WithMeter(meter metric.Meter) Option {
	return func(p *Pool) {
		var err error
		p.ioReads, err = meter.Int64Counter("bufferpool.disk.reads")
		assert.NoError(err)
		p.ioWrites, err = meter.Int64Counter("bufferpool.disk.writes")
		assert.NoError(err)
		p.hits, err = meter.Int64Counter("bufferpool.hits")
		assert.NoError(err)
	}
}

// New opens fileName through mgr and keeps the handle for the pool's
// lifetime. No frames are allocated up front.
func New(
	mgr *disk.Manager,
	fileName string,
	capacity int,
	strategy Strategy,
	opts ...Option,
) (*Pool, error) {
	if mgr == nil || fileName == "" || capacity <= 0 {
		return nil, fmt.Errorf(
			"%w: pool over %q with capacity %d",
			storage.ErrInvalidParameter, fileName, capacity,
		)
	}

	rep, err := newReplacer(strategy)
	if err != nil {
		return nil, err
	}

	fh, err := mgr.OpenPageFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening page file: %w", err)
	}

	p := &Pool{
		fileName: fileName,
		capacity: capacity,
		strategy: strategy,
		frames:   make([]*frame, 0, capacity),
		replacer: rep,
		fh:       fh,
		mgr:      mgr,
		log:      src.NoopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *Pool) FileName() string {
	return p.fileName
}

func (p *Pool) Capacity() int {
	return p.capacity
}

func (p *Pool) Strategy() Strategy {
	return p.strategy
}

func (p *Pool) findFrame(pageNum int) *frame {
	for _, f := range p.frames {
		if f.pageNum == pageNum {
			return f
		}
	}

	return nil
}

func (p *Pool) touch(f *frame) {
	p.tick++
	f.lastTouch = p.tick
	f.refCount++
	f.refBit = true
}

// readThrough loads pageNum from disk into buf, growing the file first when
// the page does not exist yet. A freshly grown page reads back zeroed.
func (p *Pool) readThrough(pageNum int, buf []byte) error {
	if pageNum >= p.fh.TotalPages() {
		if err := p.fh.EnsureCapacity(pageNum + 1); err != nil {
			return fmt.Errorf("growing %s to %d pages: %w", p.fileName, pageNum+1, err)
		}
	}

	if err := p.fh.ReadBlock(pageNum, buf); err != nil {
		return err
	}

	p.reads++
	if p.ioReads != nil {
		p.ioReads.Add(context.Background(), 1)
	}

	return nil
}

func (p *Pool) writeBack(f *frame) error {
	if err := p.fh.WriteBlock(f.pageNum, f.data); err != nil {
		return err
	}

	p.writes++
	if p.ioWrites != nil {
		p.ioWrites.Add(context.Background(), 1)
	}

	return nil
}

// Pin makes page pageNum resident and reserves it for the caller. Every Pin
// must be paired with an Unpin on all control-flow exits.
func (p *Pool) Pin(pageNum int) (PageHandle, error) {
	if pageNum < 0 {
		return PageHandle{}, fmt.Errorf("%w: pin of page %d", storage.ErrInvalidParameter, pageNum)
	}

	// Hit.
	if f := p.findFrame(pageNum); f != nil {
		f.pinCount++
		p.touch(f)

		if p.hits != nil {
			p.hits.Add(context.Background(), 1)
		}

		return PageHandle{PageNum: pageNum, Data: f.data}, nil
	}

	// Miss with a free slot: load into a new frame in insertion order.
	if len(p.frames) < p.capacity {
		buf := make([]byte, disk.PageSize)
		if err := p.readThrough(pageNum, buf); err != nil {
			return PageHandle{}, err
		}

		f := &frame{
			data:     buf,
			pageNum:  pageNum,
			pinCount: 1,
		}
		p.touch(f)
		p.frames = append(p.frames, f)

		return PageHandle{PageNum: pageNum, Data: f.data}, nil
	}

	// Miss with a full pool: evict a victim and reuse its frame in place.
	victim, err := p.replacer.Victim(p.frames)
	if err != nil {
		return PageHandle{}, err
	}

	f := p.frames[victim]
	assert.Assert(f.pinCount == 0, "victim frame for page %d is pinned", f.pageNum)

	if f.dirty {
		if err := p.writeBack(f); err != nil {
			return PageHandle{}, fmt.Errorf("evicting page %d: %w", f.pageNum, err)
		}
		f.dirty = false
	}

	clear(f.data)
	if err := p.readThrough(pageNum, f.data); err != nil {
		return PageHandle{}, err
	}

	p.log.Debugf("evicted page %d of %s for page %d", f.pageNum, p.fileName, pageNum)

	f.pageNum = pageNum
	f.pinCount = 1
	f.refCount = 0
	p.touch(f)

	return PageHandle{PageNum: pageNum, Data: f.data}, nil
}

// Unpin releases one reservation on the page.
func (p *Pool) Unpin(page PageHandle) error {
	f := p.findFrame(page.PageNum)
	if f == nil {
		return fmt.Errorf("%w: unpin of page %d", storage.ErrPageNotCached, page.PageNum)
	}
	if f.pinCount <= 0 {
		return fmt.Errorf(
			"%w: unpin of page %d with zero pin count",
			storage.ErrInvalidParameter, page.PageNum,
		)
	}

	f.pinCount--

	return nil
}

// MarkDirty records that the pin holder mutated the page.
func (p *Pool) MarkDirty(page PageHandle) error {
	f := p.findFrame(page.PageNum)
	if f == nil {
		return fmt.Errorf("%w: mark dirty of page %d", storage.ErrPageNotCached, page.PageNum)
	}

	f.dirty = true

	return nil
}

// ForcePage synchronously writes the frame's current contents back to disk,
// regardless of pin count.
func (p *Pool) ForcePage(page PageHandle) error {
	f := p.findFrame(page.PageNum)
	if f == nil {
		return fmt.Errorf("%w: force of page %d", storage.ErrPageNotCached, page.PageNum)
	}

	if err := p.writeBack(f); err != nil {
		return err
	}

	f.dirty = false

	return nil
}

// ForceFlush writes back every dirty unpinned frame, stopping at the first
// I/O error.
func (p *Pool) ForceFlush() error {
	for _, f := range p.frames {
		if !f.dirty || f.pinCount > 0 {
			continue
		}

		if err := p.writeBack(f); err != nil {
			return fmt.Errorf("flushing page %d: %w", f.pageNum, err)
		}

		f.dirty = false
	}

	return nil
}

// Shutdown flushes and tears the pool down. When any frame is still pinned it
// fails with ErrPinnedPagesInBuffer and leaves the pool fully usable.
func (p *Pool) Shutdown() error {
	if err := p.ForceFlush(); err != nil {
		return err
	}

	for _, f := range p.frames {
		if f.pinCount > 0 {
			return fmt.Errorf(
				"%w: page %d has pin count %d",
				storage.ErrPinnedPagesInBuffer, f.pageNum, f.pinCount,
			)
		}
	}

	p.frames = nil

	if err := p.fh.Close(); err != nil {
		return err
	}

	return nil
}

// FrameContents reports the cached page number per frame slot in insertion
// order, zero-padded to capacity.
func (p *Pool) FrameContents() []int {
	res := make([]int, p.capacity)
	for i, f := range p.frames {
		res[i] = f.pageNum
	}

	return res
}

// DirtyFlags reports the dirty bit per frame slot, false-padded to capacity.
func (p *Pool) DirtyFlags() []bool {
	res := make([]bool, p.capacity)
	for i, f := range p.frames {
		res[i] = f.dirty
	}

	return res
}

// PinCounts reports the pin count per frame slot, zero-padded to capacity.
func (p *Pool) PinCounts() []int {
	res := make([]int, p.capacity)
	for i, f := range p.frames {
		res[i] = f.pinCount
	}

	return res
}

// ReadIO counts successful page reads since the pool was created.
func (p *Pool) ReadIO() int {
	return p.reads
}

// WriteIO counts successful page writes since the pool was created.
func (p *Pool) WriteIO() int {
	return p.writes
}
