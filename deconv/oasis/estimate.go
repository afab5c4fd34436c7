package oasis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/dsp/spectrum"
	"github.com/cwbudde/algo-vecmath"
)

// MaxDecay is the upper bound applied to an estimated AR(1) coefficient.
const MaxDecay = 0.999

// Noise band of the Welch estimate, in cycles per sample.
const (
	noiseBandLo = 0.25
	noiseBandHi = 0.5
)

// NoiseLevel estimates the noise standard deviation of y from the mean
// power spectral density in the upper half of the spectrum, where the slow
// calcium dynamics carry little power.
func NoiseLevel(y []float64) (float64, error) {
	psd, err := spectrum.Welch(y, spectrum.DefaultSegmentLen)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", deconv.ErrInvalidTrace, err)
	}

	sn := math.Sqrt(psd.BandMean(noiseBandLo, noiseBandHi) / 2)
	if math.IsNaN(sn) {
		return 0, fmt.Errorf("%w: no bins in noise band", deconv.ErrInvalidTrace)
	}
	return sn, nil
}

// Autocovariance returns the biased autocovariance of y at lags 0..maxLag.
func Autocovariance(y []float64, maxLag int) []float64 {
	n := len(y)
	d := make([]float64, n)
	mean := vecmath.Sum(y) / float64(n)
	for i, v := range y {
		d[i] = v - mean
	}

	maxLag = min(maxLag, n-1)
	ac := make([]float64, maxLag+1)
	for k := range ac {
		ac[k] = vecmath.DotProduct(d[:n-k], d[k:]) / float64(n)
	}
	return ac
}

// EstimateDecay estimates the AR(1) coefficient g from the autocovariance
// at lags 1..lags+1. Lag 0 is excluded since white noise inflates it. The
// estimate minimizes sum_k (ac[k+1] - g·ac[k])² and is clamped to
// [0, MaxDecay].
func EstimateDecay(y []float64, lags int) float64 {
	ac := Autocovariance(y, lags+1)

	var num, den float64
	for k := 1; k+1 < len(ac); k++ {
		num += ac[k] * ac[k+1]
		den += ac[k] * ac[k]
	}
	if den == 0 {
		return 0
	}
	return core.Clamp(num/den, 0, MaxDecay)
}
