package record

import (
	"fmt"
	"strings"

	"github.com/savrasov/HeapDB/src/pkg/utils"
	"github.com/savrasov/HeapDB/src/storage"
)

// Page 0 of a table file is self-describing metadata:
//
//	[tupleCount:int32][firstFreePage:int32][numAttr:int32][keySize:int32]
//	numAttr times: [attrName:15 bytes, NUL-padded][dataType:int32][typeLength:int32]
//
// Integers are little-endian regardless of host. Key attribute indices are
// advisory and not persisted; only their count is written (keySize), and
// decoding ignores it, so a reopened schema carries no key attributes.
const (
	metaHeaderSize   = 4 * 4
	attrNameDiskSize = 15
	attrEntrySize    = attrNameDiskSize + 4 + 4

	tupleCountOffset    = 0
	firstFreePageOffset = 4
)

type tableMeta struct {
	tupleCount    int
	firstFreePage int
	schema        *storage.Schema
}

func metaSize(numAttrs int) int {
	return metaHeaderSize + numAttrs*attrEntrySize
}

func encodeTableMeta(buf []byte, m tableMeta) error {
	s := m.schema
	if metaSize(s.NumAttrs()) > len(buf) {
		return fmt.Errorf(
			"%w: schema with %d attributes does not fit the metadata page",
			storage.ErrInvalidParameter, s.NumAttrs(),
		)
	}

	utils.PutInt32(buf[tupleCountOffset:], int32(m.tupleCount))
	utils.PutInt32(buf[firstFreePageOffset:], int32(m.firstFreePage))
	utils.PutInt32(buf[8:], int32(s.NumAttrs()))
	utils.PutInt32(buf[12:], int32(len(s.KeyAttrs)))

	off := metaHeaderSize
	for i := range s.AttrNames {
		name := buf[off : off+attrNameDiskSize]
		clear(name)
		// 14 usable bytes, the 15th stays NUL.
		copy(name[:attrNameDiskSize-1], s.AttrNames[i])

		utils.PutInt32(buf[off+attrNameDiskSize:], int32(s.DataTypes[i]))
		utils.PutInt32(buf[off+attrNameDiskSize+4:], int32(s.TypeLengths[i]))

		off += attrEntrySize
	}

	return nil
}

func decodeTableMeta(buf []byte) (tableMeta, error) {
	if len(buf) < metaHeaderSize {
		return tableMeta{}, fmt.Errorf("%w: truncated metadata page", storage.ErrInvalidParameter)
	}

	numAttrs := int(utils.Int32(buf[8:]))
	if numAttrs <= 0 || metaSize(numAttrs) > len(buf) {
		return tableMeta{}, fmt.Errorf(
			"%w: metadata page declares %d attributes",
			storage.ErrInvalidParameter, numAttrs,
		)
	}

	names := make([]string, numAttrs)
	types := make([]storage.DataType, numAttrs)
	lengths := make([]int, numAttrs)

	off := metaHeaderSize
	for i := range numAttrs {
		raw := string(buf[off : off+attrNameDiskSize])
		if cut := strings.IndexByte(raw, 0); cut >= 0 {
			raw = raw[:cut]
		}
		names[i] = raw

		types[i] = storage.DataType(utils.Int32(buf[off+attrNameDiskSize:]))
		lengths[i] = int(utils.Int32(buf[off+attrNameDiskSize+4:]))

		off += attrEntrySize
	}

	schema, err := storage.NewSchema(names, types, lengths, nil)
	if err != nil {
		return tableMeta{}, err
	}

	return tableMeta{
		tupleCount:    int(utils.Int32(buf[tupleCountOffset:])),
		firstFreePage: int(utils.Int32(buf[firstFreePageOffset:])),
		schema:        schema,
	}, nil
}

// encodeCounters rewrites only the two leading integers of an already-valid
// metadata page; the rest of the frame buffer is preserved as read.
func encodeCounters(buf []byte, tupleCount, firstFreePage int) {
	utils.PutInt32(buf[tupleCountOffset:], int32(tupleCount))
	utils.PutInt32(buf[firstFreePageOffset:], int32(firstFreePage))
}
