package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/savrasov/HeapDB/src/storage"
)

// parseAttrSpec turns "name:type[:len]" flags into a schema. Types: int,
// float, bool, string (string requires a length).
func parseAttrSpec(attrs []string, keys []string) (*storage.Schema, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("at least one --attr is required")
	}

	names := make([]string, 0, len(attrs))
	types := make([]storage.DataType, 0, len(attrs))
	lengths := make([]int, 0, len(attrs))

	for _, spec := range attrs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid attribute spec %q, want name:type[:len]", spec)
		}

		var (
			t      storage.DataType
			length int
		)

		switch strings.ToLower(parts[1]) {
		case "int":
			t = storage.TypeInt
		case "float":
			t = storage.TypeFloat
		case "bool":
			t = storage.TypeBool
		case "string":
			if len(parts) != 3 {
				return nil, fmt.Errorf("string attribute %q needs a length", parts[0])
			}

			n, err := strconv.Atoi(parts[2])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid string length in %q", spec)
			}

			t = storage.TypeString
			length = n
		default:
			return nil, fmt.Errorf("unknown attribute type %q", parts[1])
		}

		names = append(names, parts[0])
		types = append(types, t)
		lengths = append(lengths, length)
	}

	keyAttrs := make([]int, 0, len(keys))
	for _, k := range keys {
		idx := -1
		for i, n := range names {
			if n == k {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("key attribute %q is not declared", k)
		}

		keyAttrs = append(keyAttrs, idx)
	}

	return storage.NewSchema(names, types, lengths, keyAttrs)
}

// parseValue parses one CLI argument according to the attribute's type.
func parseValue(t storage.DataType, s string) (*storage.Value, error) {
	switch t {
	case storage.TypeInt:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q: %w", s, err)
		}

		return storage.NewIntValue(int32(n)), nil
	case storage.TypeFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q: %w", s, err)
		}

		return storage.NewFloatValue(float32(f)), nil
	case storage.TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q: %w", s, err)
		}

		return storage.NewBoolValue(b), nil
	case storage.TypeString:
		return storage.NewStringValue(s), nil
	}

	return nil, fmt.Errorf("unknown data type %d", int(t))
}
