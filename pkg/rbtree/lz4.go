package rbtree

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pierrec/lz4/v4"
)

// CompressUInt32Slice serializes a uint32 slice to little-endian bytes and
// LZ4-compresses the result. Used by Allocator.Hibernate to shrink the
// resident footprint of an idle tree's node storage.
func CompressUInt32Slice(data []uint32) []byte {
	raw := make([]byte, len(data)*4)

	for idx, v := range data {
		binary.LittleEndian.PutUint32(raw[idx*4:], v)
	}

	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)

	if _, err := w.Write(raw); err != nil {
		panic("rbtree: lz4 compress: " + err.Error())
	}

	if err := w.Close(); err != nil {
		panic("rbtree: lz4 compress: " + err.Error())
	}

	return buf.Bytes()
}

// DecompressUInt32Slice decompresses packed (as produced by
// CompressUInt32Slice) into dst, which must already be sized to the
// original element count.
func DecompressUInt32Slice(packed []byte, dst []uint32) {
	r := lz4.NewReader(bytes.NewReader(packed))

	raw := make([]byte, len(dst)*4)

	if _, err := io.ReadFull(r, raw); err != nil {
		panic("rbtree: lz4 decompress: " + err.Error())
	}

	for idx := range dst {
		dst[idx] = binary.LittleEndian.Uint32(raw[idx*4:])
	}
}
