package page

import (
	"github.com/savrasov/HeapDB/src/pkg/assert"
	"github.com/savrasov/HeapDB/src/pkg/optional"
	"github.com/savrasov/HeapDB/src/storage"
)

// HeapPage interprets a pinned data-page buffer as a sequence of fixed-width
// tombstoned slots. It is a non-owning view; it stays valid exactly as long
// as the pin on the underlying frame.
//
// Slot layout: [tombstone:1][attribute bytes]. Trailing bytes that do not fit
// a whole slot are reserved and never touched.
type HeapPage struct {
	data       []byte
	recordSize int
}

func NewHeapPage(data []byte, recordSize int) HeapPage {
	assert.Assert(recordSize > 0, "record size %d", recordSize)
	assert.Assert(recordSize <= len(data), "record of %d bytes on a %d-byte page", recordSize, len(data))

	return HeapPage{data: data, recordSize: recordSize}
}

// SlotCount returns floor(pageSize / recordSize).
func (p HeapPage) SlotCount() int {
	return len(p.data) / p.recordSize
}

// Slot returns the raw bytes of slot i, tombstone included.
func (p HeapPage) Slot(i int) []byte {
	assert.Assert(i >= 0 && i < p.SlotCount(), "slot %d of %d", i, p.SlotCount())

	off := i * p.recordSize

	return p.data[off : off+p.recordSize]
}

// IsFree reports whether slot i holds no live record. A zeroed page reads as
// all-free.
func (p HeapPage) IsFree(i int) bool {
	return p.Slot(i)[0] == storage.SlotFree
}

func (p HeapPage) SetTombstone(i int, state byte) {
	p.Slot(i)[0] = state
}

// FirstFreeSlot probes slots left to right for a free tombstone.
func (p HeapPage) FirstFreeSlot() optional.Optional[int] {
	for i := range p.SlotCount() {
		if p.IsFree(i) {
			return optional.Some(i)
		}
	}

	return optional.None[int]()
}
