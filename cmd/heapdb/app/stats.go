package app

import (
	"github.com/go-faster/jx"

	"github.com/savrasov/HeapDB/src/storage/engine"
)

func encodeStats(st engine.TableStats) (string, error) {
	var e jx.Encoder

	e.ObjStart()

	e.FieldStart("table")
	e.Str(st.Table)
	e.FieldStart("tuples")
	e.Int(st.Tuples)
	e.FieldStart("record_size")
	e.Int(st.RecordSize)
	e.FieldStart("slots_per_page")
	e.Int(st.SlotsPerPage)
	e.FieldStart("pool_capacity")
	e.Int(st.PoolCapacity)
	e.FieldStart("strategy")
	e.Str(st.Strategy)
	e.FieldStart("read_io")
	e.Int(st.ReadIO)
	e.FieldStart("write_io")
	e.Int(st.WriteIO)

	e.FieldStart("frame_contents")
	e.ArrStart()
	for _, p := range st.FrameContents {
		e.Int(p)
	}
	e.ArrEnd()

	e.FieldStart("dirty_flags")
	e.ArrStart()
	for _, d := range st.DirtyFlags {
		e.Bool(d)
	}
	e.ArrEnd()

	e.FieldStart("pin_counts")
	e.ArrStart()
	for _, c := range st.PinCounts {
		e.Int(c)
	}
	e.ArrEnd()

	e.ObjEnd()

	return e.String(), nil
}
