package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Drift returns a slow sinusoidal drift amplitude·sin(omega·t) with t in
// seconds at the given frame rate.
func Drift(amplitude, omega, frameRate float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * math.Sin(omega*float64(i)/frameRate)
	}
	return out
}

// Calcium describes a simulated fluorescence trace.
type Calcium struct {
	Length    int     // samples
	FrameRate float64 // Hz
	SpikeRate float64 // mean spikes per second
	Decay     float64 // AR(1) coefficient g
	Baseline  float64
	Noise     float64 // Gaussian noise standard deviation
	Seed      int64
}

// SimulateCalcium draws a binary spike train with per-frame probability
// SpikeRate/FrameRate, convolves it with an AR(1) kernel c[t] = g·c[t-1] +
// s[t] and returns y = Baseline + c + Noise·N(0,1) together with c and s.
func SimulateCalcium(cfg Calcium) (y, c, s []float64) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	p := cfg.SpikeRate / cfg.FrameRate

	y = make([]float64, cfg.Length)
	c = make([]float64, cfg.Length)
	s = make([]float64, cfg.Length)

	prev := 0.0
	for i := range s {
		if rng.Float64() < p {
			s[i] = 1
		}
		c[i] = cfg.Decay*prev + s[i]
		prev = c[i]
	}
	for i := range y {
		y[i] = cfg.Baseline + c[i] + cfg.Noise*rng.NormFloat64()
	}
	return y, c, s
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
