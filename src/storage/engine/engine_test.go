package engine

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savrasov/HeapDB/src"
	"github.com/savrasov/HeapDB/src/query"
	"github.com/savrasov/HeapDB/src/storage"
	"github.com/savrasov/HeapDB/src/storage/record"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	e := New(afero.NewMemMapFs(), DefaultConfig(), src.NoopLogger())
	t.Cleanup(func() { _ = e.Close() })

	return e
}

func peopleSchema(t *testing.T) *storage.Schema {
	t.Helper()

	schema, err := storage.NewSchema(
		[]string{"id", "name"},
		[]storage.DataType{storage.TypeInt, storage.TypeString},
		[]int{0, 4},
		[]int{0},
	)
	require.NoError(t, err)

	return schema
}

func personRecord(
	t *testing.T,
	schema *storage.Schema,
	id int32,
	name string,
) *storage.Record {
	t.Helper()

	rec, err := record.NewRecord(schema)
	require.NoError(t, err)

	require.NoError(t, record.SetAttr(rec, schema, 0, storage.NewIntValue(id)))
	require.NoError(t, record.SetAttr(rec, schema, 1, storage.NewStringValue(name)))

	return rec
}

func TestEngineCRUD(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	require.NoError(t, e.CreateTable(ctx, "people.tbl", peopleSchema(t)))

	tbl, err := e.Table(ctx, "people.tbl")
	require.NoError(t, err)

	rec := personRecord(t, tbl.Schema, 1, "Aaa")
	require.NoError(t, e.Insert(ctx, "people.tbl", rec))

	got, err := e.Get(ctx, "people.tbl", rec.ID)
	require.NoError(t, err)

	v, err := record.GetAttr(got, tbl.Schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "Aaa", v.String)

	updated := personRecord(t, tbl.Schema, 1, "Zzz")
	updated.ID = rec.ID
	require.NoError(t, e.Update(ctx, "people.tbl", updated))

	got, err = e.Get(ctx, "people.tbl", rec.ID)
	require.NoError(t, err)
	v, err = record.GetAttr(got, tbl.Schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "Zzz", v.String)

	require.NoError(t, e.Delete(ctx, "people.tbl", rec.ID))

	_, err = e.Get(ctx, "people.tbl", rec.ID)
	assert.ErrorIs(t, err, storage.ErrNoTupleWithGivenRID)
}

func TestEngineScanWithPredicate(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	require.NoError(t, e.CreateTable(ctx, "people.tbl", peopleSchema(t)))

	tbl, err := e.Table(ctx, "people.tbl")
	require.NoError(t, err)

	for i, name := range []string{"Aaa", "Bbb", "Ccc"} {
		require.NoError(t, e.Insert(ctx, "people.tbl", personRecord(t, tbl.Schema, int32(i+1), name)))
	}

	recs, err := e.ScanAll(ctx, "people.tbl", query.AttrGreaterThan(0, storage.NewIntValue(1)))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	for i, want := range []int32{2, 3} {
		v, err := record.GetAttr(recs[i], tbl.Schema, 0)
		require.NoError(t, err)
		assert.Equal(t, want, v.Int)
	}

	all, err := e.ScanAll(ctx, "people.tbl", query.True())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEngineDropTable(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	require.NoError(t, e.CreateTable(ctx, "people.tbl", peopleSchema(t)))

	_, err := e.Table(ctx, "people.tbl")
	require.NoError(t, err)

	require.NoError(t, e.DropTable(ctx, "people.tbl"))

	_, err = e.Table(ctx, "people.tbl")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestEngineReopenSeesData(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := t.Context()

	e := New(fs, DefaultConfig(), src.NoopLogger())
	require.NoError(t, e.CreateTable(ctx, "people.tbl", peopleSchema(t)))

	tbl, err := e.Table(ctx, "people.tbl")
	require.NoError(t, err)
	require.NoError(t, e.Insert(ctx, "people.tbl", personRecord(t, tbl.Schema, 7, "Ggg")))
	require.NoError(t, e.Close())

	e2 := New(fs, DefaultConfig(), src.NoopLogger())
	defer e2.Close()

	recs, err := e2.ScanAll(ctx, "people.tbl", query.True())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	tbl2, err := e2.Table(ctx, "people.tbl")
	require.NoError(t, err)

	v, err := record.GetAttr(recs[0], tbl2.Schema, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.Int)
}

func TestLoadBatches(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	schema := peopleSchema(t)

	const (
		tables     = 4
		perTable   = 150
		numWorkers = 3
	)

	batches := make(map[string][]*storage.Record, tables)
	for ti := range tables {
		name := fmt.Sprintf("people-%d.tbl", ti)
		require.NoError(t, e.CreateTable(ctx, name, schema))

		recs := make([]*storage.Record, 0, perTable)
		for i := range perTable {
			recs = append(recs, personRecord(t, schema, int32(i), "Nnn"))
		}

		batches[name] = recs
	}

	require.NoError(t, e.LoadBatches(ctx, batches, numWorkers))

	for ti := range tables {
		name := fmt.Sprintf("people-%d.tbl", ti)

		tbl, err := e.Table(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, perTable, tbl.NumTuples())
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	ctx := t.Context()

	require.NoError(t, e.CreateTable(ctx, "people.tbl", peopleSchema(t)))

	tbl, err := e.Table(ctx, "people.tbl")
	require.NoError(t, err)
	require.NoError(t, e.Insert(ctx, "people.tbl", personRecord(t, tbl.Schema, 1, "Aaa")))

	st, err := e.Stats(ctx, "people.tbl")
	require.NoError(t, err)

	assert.Equal(t, "people.tbl", st.Table)
	assert.Equal(t, 1, st.Tuples)
	assert.Equal(t, "LRU", st.Strategy)
	assert.Equal(t, record.DefaultPoolCapacity, st.PoolCapacity)
	assert.GreaterOrEqual(t, st.ReadIO, 1)
	assert.Len(t, st.FrameContents, st.PoolCapacity)
}
