// Package calcium implements the preprocessing steps applied to calcium
// imaging traces before and during spike inference: median-filter and
// Savitzky-Golay detrending, event rescaling, rolling-percentile dF/F
// normalization and a deconvolution adapter.
//
// Every step implements Transformer. Steps fit at transform time: the
// per-column baselines and solver outputs are computed inside Transform and
// returned next to the transformed table in Result.Params, so transformers
// hold only their immutable configuration.
//
// Columns are independent. Each Transform processes them through a bounded
// worker group (core.WithWorkers, one worker by default) and assembles the
// output table only after every column has succeeded.
package calcium
