package engine

import "context"

// TableStats is a point-in-time snapshot of one open table and its pool,
// shaped for the CLI's JSON output.
type TableStats struct {
	Table         string
	Tuples        int
	RecordSize    int
	SlotsPerPage  int
	PoolCapacity  int
	Strategy      string
	ReadIO        int
	WriteIO       int
	FrameContents []int
	DirtyFlags    []bool
	PinCounts     []int
}

func (e *Engine) Stats(ctx context.Context, table string) (TableStats, error) {
	t, err := e.Table(ctx, table)
	if err != nil {
		return TableStats{}, err
	}

	pool := t.Pool()

	return TableStats{
		Table:         table,
		Tuples:        t.NumTuples(),
		RecordSize:    t.RecordSize(),
		SlotsPerPage:  t.SlotsPerPage(),
		PoolCapacity:  pool.Capacity(),
		Strategy:      pool.Strategy().String(),
		ReadIO:        pool.ReadIO(),
		WriteIO:       pool.WriteIO(),
		FrameContents: pool.FrameContents(),
		DirtyFlags:    pool.DirtyFlags(),
		PinCounts:     pool.PinCounts(),
	}, nil
}
