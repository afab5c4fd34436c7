package tracestore

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression of a dataset payload.
type Codec uint8

const (
	// CodecNone stores samples uncompressed.
	CodecNone Codec = iota
	// CodecZstd compresses with Zstandard; the best ratio for archival stores.
	CodecZstd
	// CodecS2 compresses with S2, favoring speed.
	CodecS2
	// CodecLZ4 compresses with LZ4 blocks.
	CodecLZ4
)

var codecNames = map[Codec]string{
	CodecNone: "none",
	CodecZstd: "zstd",
	CodecS2:   "s2",
	CodecLZ4:  "lz4",
}

// String returns the codec name.
func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

// ParseCodec maps a codec name to its Codec.
func ParseCodec(name string) (Codec, error) {
	for c, n := range codecNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("tracestore: create zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxSamples*8),
		)
		if err != nil {
			panic(fmt.Sprintf("tracestore: create zstd decoder: %v", err))
		}
		return dec
	},
}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

func compress(c Codec, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch c {
	case CodecNone:
		return data, nil
	case CodecZstd:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	case CodecS2:
		return s2.Encode(nil, data), nil
	case CodecLZ4:
		lc := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)

		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lc.CompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("tracestore: lz4 compression failed: %w", err)
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}
}

// checkExpansion rejects payloads that cannot inflate to size bytes, before
// any buffer of that size is allocated.
func checkExpansion(c Codec, payload, size int) error {
	switch c {
	case CodecNone:
		if payload != size {
			return fmt.Errorf("%w: %d raw payload bytes for %d sample bytes", ErrCorrupt, payload, size)
		}
	case CodecLZ4:
		if size > lz4MaxExpansion*payload+16 {
			return fmt.Errorf("%w: %d lz4 bytes cannot inflate to %d", ErrCorrupt, payload, size)
		}
	}
	return nil
}

// lz4MaxExpansion bounds the inflated size per compressed lz4 byte.
const lz4MaxExpansion = 255

// decompress inflates data into exactly size bytes.
func decompress(c Codec, data []byte, size int) ([]byte, error) {
	if size == 0 {
		if len(data) != 0 {
			return nil, fmt.Errorf("%w: %d payload bytes for an empty dataset", ErrCorrupt, len(data))
		}
		return nil, nil
	}

	var (
		out []byte
		err error
	)
	switch c {
	case CodecNone:
		out = data
	case CodecZstd:
		var h zstd.Header
		if err := h.Decode(data); err != nil {
			return nil, fmt.Errorf("%w: zstd header: %w", ErrCorrupt, err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, fmt.Errorf("%w: zstd frame holds %d bytes, want %d", ErrCorrupt, h.FrameContentSize, size)
		}
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		out, err = dec.DecodeAll(data, nil)
		zstdDecoderPool.Put(dec)
	case CodecS2:
		n, lerr := s2.DecodedLen(data)
		if lerr != nil || n != size {
			return nil, fmt.Errorf("%w: s2 block decodes to %d bytes, want %d", ErrCorrupt, n, size)
		}
		out, err = s2.Decode(nil, data)
	case CodecLZ4:
		if err := checkExpansion(c, len(data), size); err != nil {
			return nil, err
		}
		buf := make([]byte, size)
		var n int
		n, err = lz4.UncompressBlock(data, buf)
		out = buf[:n]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s payload inflates to %d bytes, want %d", ErrCorrupt, c, len(out), size)
	}
	return out, nil
}
