package record

import (
	"fmt"
	"math"
	"strings"

	"github.com/savrasov/HeapDB/src/pkg/utils"
	"github.com/savrasov/HeapDB/src/storage"
)

// NewRecord allocates a zeroed record sized for the schema. The ID starts as
// (-1,-1) until an insert assigns one.
func NewRecord(schema *storage.Schema) (*storage.Record, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: record without schema", storage.ErrInvalidParameter)
	}

	size := schema.RecordSize()
	if size <= 0 {
		return nil, fmt.Errorf("%w: schema with unknown attribute type", storage.ErrInvalidParameter)
	}

	return &storage.Record{
		ID:   storage.RID{Page: -1, Slot: -1},
		Data: make([]byte, size),
	}, nil
}

// GetAttr decodes attribute attrNum into a freshly allocated Value. String
// values are copied out of the record and stop at the first NUL pad byte.
func GetAttr(rec *storage.Record, schema *storage.Schema, attrNum int) (*storage.Value, error) {
	if rec == nil || schema == nil {
		return nil, fmt.Errorf("%w: get attribute of nil record", storage.ErrInvalidParameter)
	}

	offset, err := schema.AttrOffset(attrNum)
	if err != nil {
		return nil, err
	}

	switch schema.DataTypes[attrNum] {
	case storage.TypeInt:
		return storage.NewIntValue(utils.Int32(rec.Data[offset:])), nil
	case storage.TypeFloat:
		bits := uint32(utils.Int32(rec.Data[offset:]))
		return storage.NewFloatValue(math.Float32frombits(bits)), nil
	case storage.TypeBool:
		return storage.NewBoolValue(rec.Data[offset] != 0), nil
	case storage.TypeString:
		raw := string(rec.Data[offset : offset+schema.TypeLengths[attrNum]])
		if cut := strings.IndexByte(raw, 0); cut >= 0 {
			raw = raw[:cut]
		}

		return storage.NewStringValue(raw), nil
	}

	return nil, fmt.Errorf(
		"%w: attribute %d of unknown type",
		storage.ErrInvalidParameter, attrNum,
	)
}

// SetAttr serialises the value into the record at the attribute's fixed
// offset. Strings are padded or truncated to the declared length; no
// terminator is stored inside the record.
func SetAttr(rec *storage.Record, schema *storage.Schema, attrNum int, val *storage.Value) error {
	if rec == nil || schema == nil || val == nil {
		return fmt.Errorf("%w: set attribute of nil record", storage.ErrInvalidParameter)
	}

	offset, err := schema.AttrOffset(attrNum)
	if err != nil {
		return err
	}

	if schema.DataTypes[attrNum] != val.Type {
		return fmt.Errorf(
			"%w: attribute %d is %s, value is %s",
			storage.ErrInvalidParameter, attrNum, schema.DataTypes[attrNum], val.Type,
		)
	}

	switch val.Type {
	case storage.TypeInt:
		utils.PutInt32(rec.Data[offset:], val.Int)
	case storage.TypeFloat:
		utils.PutInt32(rec.Data[offset:], int32(math.Float32bits(val.Float)))
	case storage.TypeBool:
		if val.Bool {
			rec.Data[offset] = 1
		} else {
			rec.Data[offset] = 0
		}
	case storage.TypeString:
		dst := rec.Data[offset : offset+schema.TypeLengths[attrNum]]
		clear(dst)
		copy(dst, val.String)
	}

	return nil
}
