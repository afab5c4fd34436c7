package trace

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-calcium/dsp/core"
)

var (
	// ErrInvalidTable is returned when names, index and columns do not
	// describe a rectangular table with unique column names.
	ErrInvalidTable = errors.New("trace: invalid table")

	// ErrNonFinite is returned by CheckFinite for NaN or Inf samples.
	ErrNonFinite = errors.New("trace: non-finite sample")

	// ErrInvalidInput is returned for raw matrices that cannot be tabulated.
	ErrInvalidInput = errors.New("trace: invalid input")
)

// Table is a time-series table with one column per neuron and one row per
// time sample. Column order is significant and preserved by every transform.
//
// The index is carried along untouched; the algorithms in this module only
// depend on column order and length.
type Table struct {
	names   []string
	lookup  map[string]int
	index   []float64
	columns [][]float64
}

// New builds a table from column names, a row index and column data.
// All columns must have len(index) samples and names must be unique and non-empty.
// The table takes ownership of the given slices.
func New(names []string, index []float64, columns [][]float64) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrInvalidTable, len(names), len(columns))
	}

	lookup := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", ErrInvalidTable, i)
		}
		if _, dup := lookup[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidTable, name)
		}
		lookup[name] = i

		if len(columns[i]) != len(index) {
			return nil, fmt.Errorf("%w: column %q has %d samples, index has %d",
				ErrInvalidTable, name, len(columns[i]), len(index))
		}
	}

	return &Table{
		names:   names,
		lookup:  lookup,
		index:   index,
		columns: columns,
	}, nil
}

// FromMatrix builds a table from a neurons × samples matrix. Columns are
// named "0".."N-1". A nil index is replaced by 0..samples-1.
func FromMatrix(matrix [][]float64, index []float64) (*Table, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}

	samples := len(matrix[0])
	if index == nil {
		index = SampleIndex(samples, 1)
	}

	names := make([]string, len(matrix))
	columns := make([][]float64, len(matrix))
	for i, row := range matrix {
		names[i] = strconv.Itoa(i)
		columns[i] = append([]float64(nil), row...)
	}

	return New(names, index, columns)
}

// SampleIndex returns n evenly spaced time stamps starting at 0.
func SampleIndex(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Names returns a copy of the column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Name returns the name of column i.
func (t *Table) Name(i int) string { return t.names[i] }

// Index returns a copy of the row index.
func (t *Table) Index() []float64 {
	return append([]float64(nil), t.index...)
}

// Column returns column i. The slice aliases table storage and must not be modified.
func (t *Table) Column(i int) []float64 { return t.columns[i] }

// ColumnByName returns the named column and whether it exists.
// The slice aliases table storage and must not be modified.
func (t *Table) ColumnByName(name string) ([]float64, bool) {
	i, ok := t.lookup[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	columns := make([][]float64, len(t.columns))
	for i, col := range t.columns {
		columns[i] = append([]float64(nil), col...)
	}

	lookup := make(map[string]int, len(t.lookup))
	for k, v := range t.lookup {
		lookup[k] = v
	}

	return &Table{
		names:   t.Names(),
		lookup:  lookup,
		index:   t.Index(),
		columns: columns,
	}
}

// WithColumns returns a new table with the same names and index and the
// given column data, which must match the receiver's shape. The new table
// takes ownership of columns.
func (t *Table) WithColumns(columns [][]float64) (*Table, error) {
	if len(columns) != len(t.columns) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrInvalidTable, len(columns), len(t.columns))
	}
	return New(t.Names(), t.Index(), columns)
}

// CheckFinite reports the first NaN or Inf sample as an ErrNonFinite error.
func (t *Table) CheckFinite() error {
	for i, col := range t.columns {
		if j := core.FirstNonFinite(col); j >= 0 {
			return fmt.Errorf("%w: column %q row %d: %v", ErrNonFinite, t.names[i], j, col[j])
		}
	}
	return nil
}
