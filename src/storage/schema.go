package storage

import "fmt"

// Schema describes the fixed layout of one table. In-memory attribute names
// are unbounded; the on-disk format truncates them to 14 bytes plus NUL.
// Key attribute indices are advisory only, the engine does not enforce them
// and does not persist them.
type Schema struct {
	AttrNames   []string
	DataTypes   []DataType
	TypeLengths []int
	KeyAttrs    []int
}

func NewSchema(
	attrNames []string,
	dataTypes []DataType,
	typeLengths []int,
	keyAttrs []int,
) (*Schema, error) {
	if len(attrNames) == 0 {
		return nil, fmt.Errorf("%w: schema without attributes", ErrInvalidParameter)
	}
	if len(dataTypes) != len(attrNames) || len(typeLengths) != len(attrNames) {
		return nil, fmt.Errorf(
			"%w: %d attribute names, %d types, %d type lengths",
			ErrInvalidParameter, len(attrNames), len(dataTypes), len(typeLengths),
		)
	}

	for _, k := range keyAttrs {
		if k < 0 || k >= len(attrNames) {
			return nil, fmt.Errorf("%w: key attribute %d out of range", ErrInvalidParameter, k)
		}
	}

	s := &Schema{
		AttrNames:   append([]string(nil), attrNames...),
		DataTypes:   append([]DataType(nil), dataTypes...),
		TypeLengths: append([]int(nil), typeLengths...),
		KeyAttrs:    append([]int(nil), keyAttrs...),
	}

	return s, nil
}

func (s *Schema) NumAttrs() int {
	return len(s.AttrNames)
}

// RecordSize returns the serialized width of one record: the tombstone byte
// plus every attribute at its fixed width. Returns -1 for a schema carrying
// an unknown type.
func (s *Schema) RecordSize() int {
	size := 1
	for i, t := range s.DataTypes {
		w, err := t.Width(s.TypeLengths[i])
		if err != nil {
			return -1
		}
		size += w
	}

	return size
}

// AttrOffset returns the byte offset of attribute attrNum inside a record:
// 1 for the tombstone plus the widths of all preceding attributes.
func (s *Schema) AttrOffset(attrNum int) (int, error) {
	if attrNum < 0 || attrNum >= len(s.AttrNames) {
		return 0, fmt.Errorf("%w: attribute %d of %d", ErrNoMoreTuples, attrNum, len(s.AttrNames))
	}

	offset := 1
	for i := range attrNum {
		w, err := s.DataTypes[i].Width(s.TypeLengths[i])
		if err != nil {
			return 0, err
		}
		offset += w
	}

	return offset, nil
}
