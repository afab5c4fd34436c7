package trace

import (
	"fmt"
	"strconv"
)

// DefaultFrameRate is the acquisition rate of the two-photon traces the
// rebinner was written for, in frames per second.
const DefaultFrameRate = 30

// Rebin averages a neurons × samples matrix into bins of rate samples.
//
// The leading samples%rate samples are discarded so the remainder divides
// evenly; each following run of rate samples becomes one row. The resulting
// table has one row per whole time unit (index 0, 1, ...) and columns named
// "0".."N-1".
func Rebin(matrix [][]float64, rate int) (*Table, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be > 0: %d", ErrInvalidInput, rate)
	}
	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}

	samples := len(matrix[0])
	for i, row := range matrix {
		if len(row) != samples {
			return nil, fmt.Errorf("%w: row %d has %d samples, row 0 has %d", ErrInvalidInput, i, len(row), samples)
		}
	}

	bins := samples / rate
	if bins == 0 {
		return nil, fmt.Errorf("%w: %d samples is shorter than one bin of %d", ErrInvalidInput, samples, rate)
	}
	skip := samples - bins*rate

	names := make([]string, len(matrix))
	columns := make([][]float64, len(matrix))

	for i, row := range matrix {
		names[i] = strconv.Itoa(i)
		col := make([]float64, bins)
		src := row[skip:]
		for b := range col {
			var sum float64
			for _, v := range src[b*rate : (b+1)*rate] {
				sum += v
			}
			col[b] = sum / float64(rate)
		}
		columns[i] = col
	}

	return New(names, SampleIndex(bins, 1), columns)
}
