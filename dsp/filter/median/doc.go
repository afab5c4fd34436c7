// Package median provides a sliding-window median filter with zero padding
// at both edges, matching the boundary behavior of scipy.signal.medfilt.
//
// The running window is kept sorted, so each output sample costs O(kernel)
// rather than a full sort.
package median
