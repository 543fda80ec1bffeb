package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savrasov/HeapDB/src/storage"
)

func mixedSchema(t *testing.T) *storage.Schema {
	t.Helper()

	schema, err := storage.NewSchema(
		[]string{"id", "name", "ratio", "active"},
		[]storage.DataType{
			storage.TypeInt, storage.TypeString, storage.TypeFloat, storage.TypeBool,
		},
		[]int{0, 6, 0, 0},
		nil,
	)
	require.NoError(t, err)

	return schema
}

func TestRecordSize(t *testing.T) {
	schema := mixedSchema(t)

	// 1 tombstone + 4 + 6 + 4 + 1.
	assert.Equal(t, 16, schema.RecordSize())

	bad := &storage.Schema{
		AttrNames:   []string{"x"},
		DataTypes:   []storage.DataType{storage.DataType(42)},
		TypeLengths: []int{0},
	}
	assert.Equal(t, -1, bad.RecordSize())
}

func TestAttrOffsets(t *testing.T) {
	schema := mixedSchema(t)

	expected := []int{1, 5, 11, 15}
	for i, want := range expected {
		off, err := schema.AttrOffset(i)
		require.NoError(t, err)
		assert.Equal(t, want, off)
	}

	_, err := schema.AttrOffset(-1)
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)

	_, err = schema.AttrOffset(4)
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}

func TestSetGetRoundTrip(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)
	assert.Equal(t, storage.RID{Page: -1, Slot: -1}, rec.ID)

	require.NoError(t, SetAttr(rec, schema, 0, storage.NewIntValue(-17)))
	require.NoError(t, SetAttr(rec, schema, 1, storage.NewStringValue("abc")))
	require.NoError(t, SetAttr(rec, schema, 2, storage.NewFloatValue(2.5)))
	require.NoError(t, SetAttr(rec, schema, 3, storage.NewBoolValue(true)))

	v, err := GetAttr(rec, schema, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(-17), v.Int)

	v, err = GetAttr(rec, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", v.String)

	v, err = GetAttr(rec, schema, 2)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v.Float)

	v, err = GetAttr(rec, schema, 3)
	require.NoError(t, err)
	assert.True(t, v.Bool)
}

func TestStringPaddingAndTruncation(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)

	// Shorter than the declared length: NUL-padded on disk, pad stripped on read.
	require.NoError(t, SetAttr(rec, schema, 1, storage.NewStringValue("ab")))

	v, err := GetAttr(rec, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "ab", v.String)

	// Longer: truncated to the declared length.
	require.NoError(t, SetAttr(rec, schema, 1, storage.NewStringValue("abcdefghij")))

	v, err = GetAttr(rec, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", v.String)
}

func TestSetAttrOverwritesPadding(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)

	require.NoError(t, SetAttr(rec, schema, 1, storage.NewStringValue("abcdef")))
	require.NoError(t, SetAttr(rec, schema, 1, storage.NewStringValue("z")))

	v, err := GetAttr(rec, schema, 1)
	require.NoError(t, err)
	assert.Equal(t, "z", v.String)
}

func TestAttrRangeErrors(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)

	_, err = GetAttr(rec, schema, 4)
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)

	err = SetAttr(rec, schema, -1, storage.NewIntValue(0))
	assert.ErrorIs(t, err, storage.ErrNoMoreTuples)
}

func TestSetAttrTypeMismatch(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)

	err = SetAttr(rec, schema, 0, storage.NewStringValue("nope"))
	assert.ErrorIs(t, err, storage.ErrInvalidParameter)
}

func TestNilArguments(t *testing.T) {
	schema := mixedSchema(t)

	rec, err := NewRecord(schema)
	require.NoError(t, err)

	_, err = NewRecord(nil)
	assert.ErrorIs(t, err, storage.ErrInvalidParameter)

	_, err = GetAttr(nil, schema, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidParameter)

	err = SetAttr(rec, schema, 0, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidParameter)
}
