package tracestore

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
)

type dataset struct {
	rows, cols int
	codec      Codec
	checksum   uint64
	payload    []byte
}

// File is an opened store. Datasets are decoded on demand.
type File struct {
	keys     []string
	datasets map[string]dataset
}

// Open reads the store at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tracestore: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a whole store from r. Record framing and codec ids are
// checked here; checksums are verified when a dataset is decoded.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tracestore: read: %w", err)
	}

	if len(data) < headerSize || string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := data[len(magic)]; v != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	f := &File{datasets: make(map[string]dataset)}
	for off := headerSize; off < len(data); {
		key, ds, next, err := parseRecord(data, off)
		if err != nil {
			return nil, err
		}
		if _, dup := f.datasets[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrCorrupt, key)
		}
		f.keys = append(f.keys, key)
		f.datasets[key] = ds
		off = next
	}
	return f, nil
}

func parseRecord(data []byte, off int) (string, dataset, int, error) {
	if len(data)-off < 2 {
		return "", dataset{}, 0, fmt.Errorf("%w: truncated record at offset %d", ErrCorrupt, off)
	}
	keyLen := int(byteOrder.Uint16(data[off:]))
	off += 2
	if len(data)-off < keyLen+recordFixedSize {
		return "", dataset{}, 0, fmt.Errorf("%w: truncated record header at offset %d", ErrCorrupt, off)
	}

	key := string(data[off : off+keyLen])
	off += keyLen

	ds := dataset{
		rows:     int(byteOrder.Uint32(data[off:])),
		cols:     int(byteOrder.Uint32(data[off+4:])),
		codec:    Codec(data[off+8]),
		checksum: byteOrder.Uint64(data[off+17:]),
	}
	size := byteOrder.Uint64(data[off+9:])
	off += recordFixedSize

	if key == "" {
		return "", dataset{}, 0, fmt.Errorf("%w: empty key", ErrCorrupt)
	}
	if _, ok := codecNames[ds.codec]; !ok {
		return "", dataset{}, 0, fmt.Errorf("%w: dataset %q: id %d", ErrUnknownCodec, key, uint8(ds.codec))
	}
	if (ds.rows == 0) != (ds.cols == 0) {
		return "", dataset{}, 0, fmt.Errorf("%w: dataset %q has shape %dx%d", ErrCorrupt, key, ds.rows, ds.cols)
	}
	if uint64(ds.rows)*uint64(ds.cols) > maxSamples {
		return "", dataset{}, 0, fmt.Errorf("%w: dataset %q has shape %dx%d", ErrCorrupt, key, ds.rows, ds.cols)
	}
	if size > uint64(len(data)-off) {
		return "", dataset{}, 0, fmt.Errorf("%w: dataset %q payload of %d bytes is truncated", ErrCorrupt, key, size)
	}

	if err := checkExpansion(ds.codec, int(size), ds.rows*ds.cols*8); err != nil {
		return "", dataset{}, 0, fmt.Errorf("dataset %q: %w", key, err)
	}

	ds.payload = data[off : off+int(size)]
	return key, ds, off + int(size), nil
}

// Keys returns the dataset keys in storage order.
func (f *File) Keys() []string {
	return slices.Clone(f.keys)
}

// Shape returns the rows and columns of the dataset under key.
func (f *File) Shape(key string) (rows, cols int, err error) {
	ds, err := f.lookup(key)
	if err != nil {
		return 0, 0, err
	}
	return ds.rows, ds.cols, nil
}

// Dataset decodes the matrix stored under key and verifies its checksum.
func (f *File) Dataset(key string) ([][]float64, error) {
	ds, err := f.lookup(key)
	if err != nil {
		return nil, err
	}

	raw, err := decompress(ds.codec, ds.payload, ds.rows*ds.cols*8)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", key, err)
	}
	if sum := xxhash.Sum64(raw); sum != ds.checksum {
		return nil, fmt.Errorf("%w: dataset %q checksum %016x, want %016x", ErrCorrupt, key, sum, ds.checksum)
	}
	return decodeMatrix(raw, ds.rows, ds.cols), nil
}

// Close releases the store's buffered contents.
func (f *File) Close() error {
	if f.datasets == nil {
		return nil
	}
	f.keys, f.datasets = nil, nil
	return nil
}

func (f *File) lookup(key string) (dataset, error) {
	if f.datasets == nil {
		return dataset{}, fmt.Errorf("tracestore: dataset %q: %w", key, os.ErrClosed)
	}
	ds, ok := f.datasets[key]
	if !ok {
		return dataset{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return ds, nil
}
