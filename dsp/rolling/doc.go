// Package rolling computes centered rolling-window order statistics.
//
// Window geometry follows a centered rolling window that requires a full
// window: the window of width w at position t spans [t+off-w+1, t+off] with
// off = (w-1)/2. Positions whose window leaves the series are undefined
// (NaN) until FillEdges propagates the nearest defined value outward.
package rolling
