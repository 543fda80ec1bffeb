package utils

import "encoding/binary"

func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}

// The on-disk format is frozen to little-endian 4-byte integers regardless of
// the host, so files stay portable between builds.

func PutInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func Int32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}
