package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savrasov/HeapDB/src/storage"
)

func TestSlotCount(t *testing.T) {
	buf := make([]byte, 4096)

	assert.Equal(t, 4096, NewHeapPage(buf, 1).SlotCount())
	assert.Equal(t, 409, NewHeapPage(buf, 10).SlotCount())
	assert.Equal(t, 1, NewHeapPage(buf, 4096).SlotCount())
	assert.Equal(t, 1, NewHeapPage(buf, 3000).SlotCount())
}

func TestSlotsDoNotOverlap(t *testing.T) {
	const recordSize = 10

	buf := make([]byte, 4096)
	hp := NewHeapPage(buf, recordSize)

	last := hp.SlotCount() - 1
	for i := range hp.Slot(last) {
		hp.Slot(last)[i] = 0xFF
	}

	// The last slot ends inside the page; the trailing remainder is untouched.
	assert.Equal(t, byte(0xFF), buf[last*recordSize])
	for _, b := range buf[(last+1)*recordSize:] {
		assert.Zero(t, b)
	}
	for _, b := range buf[:last*recordSize] {
		assert.Zero(t, b)
	}
}

func TestTombstones(t *testing.T) {
	buf := make([]byte, 4096)
	hp := NewHeapPage(buf, 16)

	require.True(t, hp.IsFree(0), "a zeroed page is all-free")

	hp.SetTombstone(3, storage.SlotOccupied)
	assert.False(t, hp.IsFree(3))
	assert.True(t, hp.IsFree(2))
	assert.True(t, hp.IsFree(4))

	hp.SetTombstone(3, storage.SlotFree)
	assert.True(t, hp.IsFree(3))
}

func TestFirstFreeSlot(t *testing.T) {
	buf := make([]byte, 64)
	hp := NewHeapPage(buf, 16)

	require.Equal(t, 4, hp.SlotCount())

	slot := hp.FirstFreeSlot()
	require.True(t, slot.IsSome())
	assert.Equal(t, 0, slot.Unwrap())

	hp.SetTombstone(0, storage.SlotOccupied)
	hp.SetTombstone(1, storage.SlotOccupied)

	slot = hp.FirstFreeSlot()
	require.True(t, slot.IsSome())
	assert.Equal(t, 2, slot.Unwrap())

	for i := range hp.SlotCount() {
		hp.SetTombstone(i, storage.SlotOccupied)
	}

	assert.True(t, hp.FirstFreeSlot().IsNone())
}
