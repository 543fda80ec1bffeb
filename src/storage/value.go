package storage

import "fmt"

// Value is a tagged attribute value. Exactly one of the payload fields is
// meaningful, selected by Type.
type Value struct {
	Type   DataType
	Int    int32
	Float  float32
	Bool   bool
	String string
}

func NewIntValue(v int32) *Value {
	return &Value{Type: TypeInt, Int: v}
}

func NewFloatValue(v float32) *Value {
	return &Value{Type: TypeFloat, Float: v}
}

func NewBoolValue(v bool) *Value {
	return &Value{Type: TypeBool, Bool: v}
}

func NewStringValue(v string) *Value {
	return &Value{Type: TypeString, String: v}
}

func (v *Value) GoString() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("%g", v.Float)
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeString:
		return v.String
	}

	return fmt.Sprintf("Value(%d)", int(v.Type))
}

// Compare orders v against other. Both values must carry the same type;
// booleans only support equality (the result is 0 or 1).
func (v *Value) Compare(other *Value) (int, error) {
	if v.Type != other.Type {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTypeMismatch, v.Type, other.Type)
	}

	switch v.Type {
	case TypeInt:
		return cmp(v.Int, other.Int), nil
	case TypeFloat:
		return cmp(v.Float, other.Float), nil
	case TypeString:
		return cmp(v.String, other.String), nil
	case TypeBool:
		if v.Bool == other.Bool {
			return 0, nil
		}

		return 1, nil
	}

	return 0, fmt.Errorf("%w: unknown data type %d", ErrInvalidParameter, int(v.Type))
}

func cmp[T int32 | float32 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
