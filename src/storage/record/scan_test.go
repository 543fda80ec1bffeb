package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savrasov/HeapDB/src/storage"
)

// condFunc lets tests pass a plain function as a scan predicate.
type condFunc func(rec *storage.Record, schema *storage.Schema) (*storage.Value, error)

func (f condFunc) Eval(rec *storage.Record, schema *storage.Schema) (*storage.Value, error) {
	return f(rec, schema)
}

func matchAll() condFunc {
	return func(*storage.Record, *storage.Schema) (*storage.Value, error) {
		return storage.NewBoolValue(true), nil
	}
}

// firstAttrGreaterThan matches records whose first attribute exceeds n.
func firstAttrGreaterThan(n int32) condFunc {
	return func(rec *storage.Record, schema *storage.Schema) (*storage.Value, error) {
		v, err := GetAttr(rec, schema, 0)
		if err != nil {
			return nil, err
		}

		return storage.NewBoolValue(v.Int > n), nil
	}
}

func scanTestTable(t *testing.T) *Table {
	t.Helper()

	m := newTestTableManager()
	require.NoError(t, m.CreateTable("t.tbl", testSchema(t)))

	tbl, err := m.OpenTable("t.tbl")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })

	return tbl
}

func TestStartScanRequiresCondition(t *testing.T) {
	tbl := scanTestTable(t)

	_, err := tbl.StartScan(nil)
	assert.ErrorIs(t, err, storage.ErrScanConditionNotFound)
}

func TestScanPredicate(t *testing.T) {
	tbl := scanTestTable(t)

	for i := int32(1); i <= 3; i++ {
		rec := buildRecord(t, tbl.Schema, i, "nnnn", i)
		require.NoError(t, tbl.Insert(rec))
	}

	scan, err := tbl.StartScan(firstAttrGreaterThan(1))
	require.NoError(t, err)
	defer scan.Close()

	rec, err := scan.Next()
	require.NoError(t, err)
	requireAttrs(t, tbl.Schema, rec, 2, "nnnn", 2)

	rec, err = scan.Next()
	require.NoError(t, err)
	requireAttrs(t, tbl.Schema, rec, 3, "nnnn", 3)

	_, err = scan.Next()
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)

	// The scan stays exhausted.
	_, err = scan.Next()
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}

func TestScanSkipsDeleted(t *testing.T) {
	tbl := scanTestTable(t)

	var rids []storage.RID
	for i := int32(1); i <= 4; i++ {
		rec := buildRecord(t, tbl.Schema, i, "ssss", i)
		require.NoError(t, tbl.Insert(rec))
		rids = append(rids, rec.ID)
	}

	require.NoError(t, tbl.Delete(rids[1]))

	scan, err := tbl.StartScan(matchAll())
	require.NoError(t, err)
	defer scan.Close()

	var seen []storage.RID
	for {
		rec, err := scan.Next()
		if errors.Is(err, storage.ErrNoMoreTuples) {
			break
		}
		require.NoError(t, err)
		seen = append(seen, rec.ID)
	}

	assert.Equal(t, []storage.RID{rids[0], rids[2], rids[3]}, seen)
}

func TestScanEmptyTable(t *testing.T) {
	tbl := scanTestTable(t)

	scan, err := tbl.StartScan(matchAll())
	require.NoError(t, err)
	defer scan.Close()

	_, err = scan.Next()
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}

func TestScanAcrossPages(t *testing.T) {
	tbl := scanTestTable(t)

	total := tbl.SlotsPerPage() + 5
	for i := range total {
		rec := buildRecord(t, tbl.Schema, int32(i), "mmmm", 0)
		require.NoError(t, tbl.Insert(rec))
	}

	scan, err := tbl.StartScan(matchAll())
	require.NoError(t, err)
	defer scan.Close()

	count := 0
	for {
		_, err := scan.Next()
		if errors.Is(err, storage.ErrNoMoreTuples) {
			break
		}
		require.NoError(t, err)
		count++
	}

	assert.Equal(t, total, count)
}

func TestScanPropagatesEvaluatorError(t *testing.T) {
	tbl := scanTestTable(t)

	rec := buildRecord(t, tbl.Schema, 1, "eeee", 1)
	require.NoError(t, tbl.Insert(rec))

	boom := errors.New("predicate exploded")
	scan, err := tbl.StartScan(condFunc(
		func(*storage.Record, *storage.Schema) (*storage.Value, error) {
			return nil, boom
		},
	))
	require.NoError(t, err)
	defer scan.Close()

	_, err = scan.Next()
	assert.ErrorIs(t, err, boom)
}

func TestScanTreatsNonBoolAsNonMatch(t *testing.T) {
	tbl := scanTestTable(t)

	rec := buildRecord(t, tbl.Schema, 1, "ffff", 1)
	require.NoError(t, tbl.Insert(rec))

	scan, err := tbl.StartScan(condFunc(
		func(*storage.Record, *storage.Schema) (*storage.Value, error) {
			return storage.NewIntValue(1), nil
		},
	))
	require.NoError(t, err)
	defer scan.Close()

	_, err = scan.Next()
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}

func TestClosedScanYieldsNoTuples(t *testing.T) {
	tbl := scanTestTable(t)

	rec := buildRecord(t, tbl.Schema, 1, "cccc", 1)
	require.NoError(t, tbl.Insert(rec))

	scan, err := tbl.StartScan(matchAll())
	require.NoError(t, err)
	require.NoError(t, scan.Close())

	_, err = scan.Next()
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}
