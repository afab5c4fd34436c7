// Package savgol implements Savitzky-Golay smoothing: a local least-squares
// polynomial fit evaluated at the centre of a sliding window.
//
// Coefficients are computed with a gonum least-squares solve over the
// window's Vandermonde matrix. Edges are handled by fitting one polynomial
// to the first and last window samples and evaluating it at the remaining
// edge positions, so no padding is introduced.
package savgol
