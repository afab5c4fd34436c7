// Package sortedwin maintains a fixed-size window of samples in sorted order,
// for sliding order statistics (median, percentiles) in O(window) per step.
package sortedwin

import "sort"

// Window is a sorted multiset of float64 samples. Values must not be NaN.
type Window struct {
	vals []float64
}

// New returns an empty window with capacity for size samples.
func New(size int) *Window {
	return &Window{vals: make([]float64, 0, size)}
}

// Len returns the number of samples in the window.
func (w *Window) Len() int { return len(w.vals) }

// Insert adds v, keeping the window sorted.
func (w *Window) Insert(v float64) {
	i := sort.SearchFloat64s(w.vals, v)
	w.vals = append(w.vals, 0)
	copy(w.vals[i+1:], w.vals[i:])
	w.vals[i] = v
}

// Remove deletes one occurrence of v. It reports whether v was present.
func (w *Window) Remove(v float64) bool {
	i := sort.SearchFloat64s(w.vals, v)
	if i >= len(w.vals) || w.vals[i] != v {
		return false
	}
	copy(w.vals[i:], w.vals[i+1:])
	w.vals = w.vals[:len(w.vals)-1]
	return true
}

// Replace removes old and inserts v.
func (w *Window) Replace(old, v float64) {
	if old == v {
		return
	}
	w.Remove(old)
	w.Insert(v)
}

// At returns the k-th smallest sample.
func (w *Window) At(k int) float64 { return w.vals[k] }

// Sorted returns the window contents in ascending order. The slice aliases
// window storage and is only valid until the next mutation.
func (w *Window) Sorted() []float64 { return w.vals }

