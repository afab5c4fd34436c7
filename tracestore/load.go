package tracestore

import (
	"fmt"

	"github.com/cwbudde/algo-calcium/trace"
)

// DataKey is the dataset holding a recording's raw neurons × samples
// fluorescence matrix.
const DataKey = "data"

// LoadTable reads the DataKey matrix of the store at path and rebins it
// into a table with one row per rate samples.
func LoadTable(path string, rate int) (*trace.Table, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	matrix, err := f.Dataset(DataKey)
	if err != nil {
		return nil, err
	}

	t, err := trace.Rebin(matrix, rate)
	if err != nil {
		return nil, fmt.Errorf("tracestore: %s: %w", path, err)
	}
	return t, nil
}
