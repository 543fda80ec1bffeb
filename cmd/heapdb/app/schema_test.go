package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savrasov/HeapDB/src/storage"
)

func TestParseAttrSpec(t *testing.T) {
	schema, err := parseAttrSpec(
		[]string{"id:int", "name:string:8", "ratio:float", "active:bool"},
		[]string{"id"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "ratio", "active"}, schema.AttrNames)
	assert.Equal(t, []storage.DataType{
		storage.TypeInt, storage.TypeString, storage.TypeFloat, storage.TypeBool,
	}, schema.DataTypes)
	assert.Equal(t, []int{0, 8, 0, 0}, schema.TypeLengths)
	assert.Equal(t, []int{0}, schema.KeyAttrs)
}

func TestParseAttrSpecErrors(t *testing.T) {
	_, err := parseAttrSpec(nil, nil)
	assert.Error(t, err)

	_, err = parseAttrSpec([]string{"id"}, nil)
	assert.Error(t, err)

	_, err = parseAttrSpec([]string{"id:integer"}, nil)
	assert.Error(t, err)

	_, err = parseAttrSpec([]string{"name:string"}, nil)
	assert.Error(t, err)

	_, err = parseAttrSpec([]string{"name:string:0"}, nil)
	assert.Error(t, err)

	_, err = parseAttrSpec([]string{"id:int"}, []string{"missing"})
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	v, err := parseValue(storage.TypeInt, "-42")
	require.NoError(t, err)
	assert.Equal(t, int32(-42), v.Int)

	v, err = parseValue(storage.TypeFloat, "1.5")
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v.Float)

	v, err = parseValue(storage.TypeBool, "true")
	require.NoError(t, err)
	assert.True(t, v.Bool)

	v, err = parseValue(storage.TypeString, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String)

	_, err = parseValue(storage.TypeInt, "abc")
	assert.Error(t, err)
}
