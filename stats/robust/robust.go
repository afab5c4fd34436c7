package robust

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"
)

// NormalConsistency scales the median absolute deviation so that it
// estimates the standard deviation of normally distributed data.
const NormalConsistency = 1.4826

// Mean returns the arithmetic mean of x using Kahan summation.
// Returns NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	var sum, c float64
	for _, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(x))
}

// PercentileSorted returns the p-th percentile (0..100) of sorted data using
// linear interpolation between closest ranks: rank h = (n-1)*p/100.
// Returns NaN for empty input.
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}

	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Percentile returns the p-th percentile (0..100) of x without modifying it.
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return PercentileSorted(sorted, p)
}

// Median returns the median of x. Even-length input yields the mean of the
// two middle values.
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// MAD returns the median absolute deviation from the median.
func MAD(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}

	m := Median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - m)
	}
	sort.Float64s(dev)
	return PercentileSorted(dev, 50)
}

// Std returns the normal-consistent robust standard deviation
// 1.4826 * median(|x - median(x)|). It is unaffected by a constant shift of x.
// Returns NaN for empty input.
func Std(x []float64) float64 {
	return NormalConsistency * MAD(x)
}

// Pearson returns the Pearson correlation coefficient of a and b.
// Returns NaN if the lengths differ, are shorter than two samples, or either
// input has zero variance.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return math.NaN()
	}

	ma, mb := Mean(a), Mean(b)
	da := make([]float64, n)
	db := make([]float64, n)
	for i := range a {
		da[i] = a[i] - ma
		db[i] = b[i] - mb
	}

	saa := vecmath.DotProduct(da, da)
	sbb := vecmath.DotProduct(db, db)
	if saa == 0 || sbb == 0 {
		return math.NaN()
	}

	return vecmath.DotProduct(da, db) / math.Sqrt(saa*sbb)
}
