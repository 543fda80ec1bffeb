package storage

import "fmt"

// DataType enumerates the attribute types a table schema may carry.
type DataType int

const (
	TypeInt DataType = iota
	TypeString
	TypeFloat
	TypeBool
)

// Fixed on-disk widths. Strings occupy exactly their declared length,
// NUL-padded; there is no length prefix inside a slot.
const (
	IntSize   = 4
	FloatSize = 4
	BoolSize  = 1
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	}

	return fmt.Sprintf("DataType(%d)", int(t))
}

// Width returns the serialized size of one value of type t. typeLength is
// only consulted for strings.
func (t DataType) Width(typeLength int) (int, error) {
	switch t {
	case TypeInt:
		return IntSize, nil
	case TypeFloat:
		return FloatSize, nil
	case TypeBool:
		return BoolSize, nil
	case TypeString:
		if typeLength <= 0 {
			return 0, fmt.Errorf("%w: string attribute with length %d", ErrInvalidParameter, typeLength)
		}

		return typeLength, nil
	}

	return 0, fmt.Errorf("%w: unknown data type %d", ErrInvalidParameter, int(t))
}

// RID addresses one record: data pages start at 1, slots at 0.
type RID struct {
	Page int
	Slot int
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.Page, r.Slot)
}

// Record owns its data buffer. Data[0] is the tombstone byte; attribute bytes
// follow at fixed offsets in declaration order.
type Record struct {
	ID   RID
	Data []byte
}

// Tombstone states of a slot. A zeroed page reads as all-free.
const (
	SlotFree     byte = 0
	SlotOccupied byte = 1
)
