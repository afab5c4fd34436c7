package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrShortInput is returned when Welch receives fewer than two samples.
var ErrShortInput = errors.New("spectrum: need at least two samples")

// DefaultSegmentLen is the Welch segment length used when none is given.
const DefaultSegmentLen = 256

// PSD is a one-sided power spectral density estimate.
type PSD struct {
	// Freqs holds bin frequencies in cycles per sample (0..0.5).
	Freqs []float64
	// Density holds the one-sided density per bin, in units² per cycle/sample.
	Density []float64
}

// Welch estimates the one-sided power spectral density of x with Welch's
// method: periodic Hann segments of segmentLen samples with 50 % overlap,
// each with its mean removed, density scaling and averaging across segments.
//
// Segments are zero-padded to the next power of two for the FFT. A
// segmentLen <= 0 selects DefaultSegmentLen; it is clamped to len(x).
// For white noise of variance s², Density is approximately 2·s².
func Welch(x []float64, segmentLen int) (PSD, error) {
	if len(x) < 2 {
		return PSD{}, fmt.Errorf("%w: got %d", ErrShortInput, len(x))
	}
	if segmentLen <= 0 {
		segmentLen = DefaultSegmentLen
	}
	segmentLen = max(min(segmentLen, len(x)), 2)

	step := segmentLen - segmentLen/2
	nfft := nextPowerOf2(segmentLen)
	bins := nfft/2 + 1

	plan, err := algofft.NewPlan64(nfft)
	if err != nil {
		return PSD{}, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	win := hann(segmentLen)
	winPower := vecmath.DotProduct(win, win)

	seg := make([]float64, segmentLen)
	buf := make([]complex128, nfft)
	power := make([]float64, nfft)
	acc := make([]float64, bins)
	count := 0

	for start := 0; start+segmentLen <= len(x); start += step {
		copy(seg, x[start:start+segmentLen])
		mean := vecmath.Sum(seg) / float64(segmentLen)
		for i := range seg {
			seg[i] -= mean
		}
		vecmath.MulBlockInPlace(seg, win)

		for i := range buf {
			buf[i] = 0
		}
		for i, v := range seg {
			buf[i] = complex(v, 0)
		}

		if err := plan.Forward(buf, buf); err != nil {
			return PSD{}, fmt.Errorf("spectrum: forward FFT failed: %w", err)
		}

		PowerTo(power, buf)
		vecmath.AddBlockInPlace(acc, power[:bins])
		count++
	}

	scale := 1 / (winPower * float64(count))
	vecmath.ScaleBlockInPlace(acc, scale)

	// One-sided: fold negative frequencies onto positive ones except DC and,
	// for even FFT sizes, Nyquist.
	last := bins - 1
	if nfft%2 == 1 {
		last = bins
	}
	for k := 1; k < last; k++ {
		acc[k] *= 2
	}

	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) / float64(nfft)
	}

	return PSD{Freqs: freqs, Density: acc}, nil
}

// BandMean returns the mean density over bins with lo < f <= hi, or NaN if
// the band holds no bins.
func (p PSD) BandMean(lo, hi float64) float64 {
	var sum float64
	n := 0
	for k, f := range p.Freqs {
		if f > lo && f <= hi {
			sum += p.Density[k]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// hann returns a periodic Hann window of length n, the form used for
// spectral estimation.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
