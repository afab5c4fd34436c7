package tracestore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Option configures a Writer.
type Option func(*Writer)

// WithCodec selects the payload codec for subsequent datasets. The default
// is CodecZstd.
func WithCodec(c Codec) Option {
	return func(w *Writer) {
		w.codec = c
	}
}

// Writer appends datasets to a store.
type Writer struct {
	bw     *bufio.Writer
	closer io.Closer
	codec  Codec
	keys   map[string]struct{}
	closed bool
}

// NewWriter writes the store header to w and returns a Writer appending to
// it. Close flushes buffered output but does not close w.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	sw := &Writer{
		bw:    bufio.NewWriter(w),
		codec: CodecZstd,
		keys:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(sw)
		}
	}
	if _, ok := codecNames[sw.codec]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, sw.codec)
	}

	header := append([]byte(magic), version)
	if _, err := sw.bw.Write(header); err != nil {
		return nil, fmt.Errorf("tracestore: write header: %w", err)
	}
	return sw, nil
}

// Create creates or truncates the store at path.
func Create(path string, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("tracestore: %w", err)
	}

	w, err := NewWriter(f, opts...)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	w.closer = f
	return w, nil
}

// Put appends matrix under key. The matrix must be rectangular; its rows
// are stored in order.
func (w *Writer) Put(key string, matrix [][]float64) error {
	if w.closed {
		return fmt.Errorf("tracestore: put %q: %w", key, os.ErrClosed)
	}
	if key == "" || len(key) > maxKeyLen {
		return fmt.Errorf("%w: key length %d", ErrInvalidDataset, len(key))
	}
	if _, dup := w.keys[key]; dup {
		return fmt.Errorf("%w: duplicate key %q", ErrInvalidDataset, key)
	}

	cols := 0
	if len(matrix) > 0 {
		cols = len(matrix[0])
	}
	for i, row := range matrix {
		if len(row) != cols {
			return fmt.Errorf("%w: %q row %d has %d columns, row 0 has %d", ErrInvalidDataset, key, i, len(row), cols)
		}
	}
	if cols == 0 {
		matrix = nil
	}

	raw := encodeMatrix(matrix, cols)
	payload, err := compress(w.codec, raw)
	if err != nil {
		return err
	}

	rec := make([]byte, 0, 2+len(key)+recordFixedSize)
	rec = byteOrder.AppendUint16(rec, uint16(len(key)))
	rec = append(rec, key...)
	rec = byteOrder.AppendUint32(rec, uint32(len(matrix)))
	rec = byteOrder.AppendUint32(rec, uint32(cols))
	rec = append(rec, byte(w.codec))
	rec = byteOrder.AppendUint64(rec, uint64(len(payload)))
	rec = byteOrder.AppendUint64(rec, xxhash.Sum64(raw))

	if _, err := w.bw.Write(rec); err != nil {
		return fmt.Errorf("tracestore: write %q: %w", key, err)
	}
	if _, err := w.bw.Write(payload); err != nil {
		return fmt.Errorf("tracestore: write %q: %w", key, err)
	}

	w.keys[key] = struct{}{}
	return nil
}

// Close flushes the store and closes the file opened by Create.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.bw.Flush()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	if err != nil {
		return fmt.Errorf("tracestore: close: %w", err)
	}
	return nil
}
