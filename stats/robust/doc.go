// Package robust provides outlier-resistant summary statistics for traces:
// linear-interpolation percentiles, the median, the median absolute
// deviation and the normal-consistent robust standard deviation used to
// clamp detrending baselines.
package robust
