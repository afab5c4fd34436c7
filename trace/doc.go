// Package trace provides the column-oriented time-series table shared by the
// calcium preprocessing transformers, plus rebinning of raw per-frame traces
// into fixed-duration bins.
//
// A Table holds one column per neuron (identified by a unique name) and one
// row per time sample. Transforms produce new tables with the same names,
// order and length; they never mutate their input.
package trace
