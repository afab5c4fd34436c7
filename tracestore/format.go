package tracestore

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrKeyNotFound is returned when a store has no dataset with the
	// requested key.
	ErrKeyNotFound = errors.New("tracestore: key not found")

	// ErrCorrupt is returned for malformed containers: bad magic, an
	// unsupported version, truncated records or checksum mismatches.
	ErrCorrupt = errors.New("tracestore: corrupt store")

	// ErrUnknownCodec is returned for codec ids or names this package does
	// not implement.
	ErrUnknownCodec = errors.New("tracestore: unknown codec")

	// ErrInvalidDataset is returned by Writer.Put for empty or oversized
	// keys, duplicate keys and ragged matrices.
	ErrInvalidDataset = errors.New("tracestore: invalid dataset")
)

const (
	magic   = "CTRS"
	version = 1

	headerSize = len(magic) + 1
	// rows u32 | cols u32 | codec u8 | payload length u64 | checksum u64
	recordFixedSize = 4 + 4 + 1 + 8 + 8
	maxKeyLen       = math.MaxUint16
	maxSamples      = 1 << 31
)

var byteOrder = binary.LittleEndian

// encodeMatrix flattens a rectangular matrix row-major into little-endian
// float64 bytes.
func encodeMatrix(matrix [][]float64, cols int) []byte {
	buf := make([]byte, 0, len(matrix)*cols*8)
	for _, row := range matrix {
		for _, v := range row {
			buf = byteOrder.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf
}

func decodeMatrix(data []byte, rows, cols int) [][]float64 {
	flat := make([]float64, rows*cols)
	for i := range flat {
		flat[i] = math.Float64frombits(byteOrder.Uint64(data[i*8:]))
	}

	matrix := make([][]float64, rows)
	for r := range matrix {
		matrix[r] = flat[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return matrix
}
