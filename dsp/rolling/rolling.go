package rolling

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-calcium/internal/sortedwin"
	"github.com/cwbudde/algo-calcium/stats/robust"
)

var (
	// ErrInvalidWindow is returned for non-positive windows.
	ErrInvalidWindow = errors.New("rolling: window must be > 0")

	// ErrWindowTooLong is returned when no position has a complete window.
	ErrWindowTooLong = errors.New("rolling: window exceeds signal length")

	// ErrInvalidPercentile is returned for percentiles outside [0, 100].
	ErrInvalidPercentile = errors.New("rolling: percentile must be in [0, 100]")
)

// Bounds returns the inclusive sample range [lo, hi] of the centered window
// of the given width at position t. For even widths the window extends one
// sample further back than forward.
func Bounds(t, window int) (lo, hi int) {
	off := (window - 1) / 2
	hi = t + off
	lo = hi - window + 1
	return lo, hi
}

// Percentile computes the p-th percentile of a centered window at each
// position of x. Positions whose window would extend past either end of x
// are set to NaN. The returned slice has len(x) samples.
func Percentile(x []float64, window int, p float64) ([]float64, error) {
	if err := validate(window, p); err != nil {
		return nil, err
	}
	n := len(x)
	if window > n {
		return nil, fmt.Errorf("%w: window %d, length %d", ErrWindowTooLong, window, n)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	// First position with a complete window.
	first := window - 1 - (window-1)/2

	w := sortedwin.New(window)
	lo, hi := Bounds(first, window)
	for _, v := range x[lo : hi+1] {
		w.Insert(v)
	}
	out[first] = robust.PercentileSorted(w.Sorted(), p)

	for t := first + 1; ; t++ {
		lo, hi = Bounds(t, window)
		if hi >= n {
			break
		}
		w.Replace(x[lo-1], x[hi])
		out[t] = robust.PercentileSorted(w.Sorted(), p)
	}

	return out, nil
}

// FillEdges replaces NaN samples in place: leading gaps take the first
// defined value (backward fill), then any remaining gaps take the nearest
// defined value before them (forward fill). A slice without any defined
// value is left untouched.
func FillEdges(x []float64) {
	next := math.NaN()
	for i := len(x) - 1; i >= 0; i-- {
		if math.IsNaN(x[i]) {
			x[i] = next
		} else {
			next = x[i]
		}
	}

	prev := math.NaN()
	for i, v := range x {
		if math.IsNaN(v) {
			x[i] = prev
		} else {
			prev = v
		}
	}
}

// Baseline returns the edge-filled centered rolling percentile of x.
func Baseline(x []float64, window int, p float64) ([]float64, error) {
	b, err := Percentile(x, window, p)
	if err != nil {
		return nil, err
	}
	FillEdges(b)
	return b, nil
}

func validate(window int, p float64) error {
	if window <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindow, window)
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return fmt.Errorf("%w: %v", ErrInvalidPercentile, p)
	}
	return nil
}
