package chain

import (
	"math"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/deconv/oasis"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

// Built-in step types.
const (
	TypeMedianDetrend = "median-detrend"
	TypeSavGolDetrend = "savgol-detrend"
	TypeEventRescale  = "event-rescale"
	TypeNormalize     = "normalize"
	TypeDeconvolve    = "deconvolve"
)

type registryConfig struct {
	solver deconv.Solver
}

// RegistryOption configures the default registry.
type RegistryOption func(*registryConfig)

// WithSolver sets the solver used by deconvolve steps.
func WithSolver(s deconv.Solver) RegistryOption {
	return func(c *registryConfig) {
		if s != nil {
			c.solver = s
		}
	}
}

// DefaultRegistry returns a Registry pre-populated with all built-in step
// types. Deconvolve steps use oasis.New() unless WithSolver is given.
//
// Window parameters can be given in samples ("window") or in seconds
// ("window_seconds"), the latter converted with the processing frame rate.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{solver: oasis.New()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := NewRegistry()

	r.MustRegister(TypeMedianDetrend, func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
		if err := p.checkKnown("window", "window_seconds", "peak_std_threshold"); err != nil {
			return nil, err
		}
		rd := &reader{p: p}
		c := calcium.DefaultMedianDetrendConfig()
		c.Window = windowParam(rd, proc, c.Window, true)
		c.PeakStdThreshold = rd.num("peak_std_threshold", c.PeakStdThreshold)
		if rd.err != nil {
			return nil, rd.err
		}
		return calcium.NewMedianFilterDetrend(c, processorOptions(proc)...)
	})
	r.MustRegister(TypeSavGolDetrend, func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
		if err := p.checkKnown("window", "window_seconds", "order"); err != nil {
			return nil, err
		}
		rd := &reader{p: p}
		c := calcium.DefaultSavGolDetrendConfig()
		c.Window = windowParam(rd, proc, c.Window, true)
		c.Order = rd.integer("order", c.Order)
		if rd.err != nil {
			return nil, rd.err
		}
		return calcium.NewSavGolFilterDetrend(c, processorOptions(proc)...)
	})
	r.MustRegister(TypeEventRescale, func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
		if err := p.checkKnown("log_transform", "scale"); err != nil {
			return nil, err
		}
		rd := &reader{p: p}
		c := calcium.DefaultEventRescaleConfig()
		c.LogTransform = rd.boolean("log_transform", c.LogTransform)
		c.Scale = rd.num("scale", c.Scale)
		if rd.err != nil {
			return nil, rd.err
		}
		return calcium.NewEventRescale(c, processorOptions(proc)...)
	})
	r.MustRegister(TypeNormalize, func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
		if err := p.checkKnown("window", "window_seconds", "percentile"); err != nil {
			return nil, err
		}
		rd := &reader{p: p}
		c := calcium.DefaultNormalizerConfig()
		c.Window = windowParam(rd, proc, c.Window, false)
		c.Percentile = rd.num("percentile", c.Percentile)
		if rd.err != nil {
			return nil, rd.err
		}
		return calcium.NewNormalizer(c, processorOptions(proc)...)
	})
	r.MustRegister(TypeDeconvolve, func(p Params, proc core.ProcessorConfig) (calcium.Transformer, error) {
		if err := p.checkKnown("output", "g", "sn", "b", "b_nonneg", "optimize_g", "penalty", "extra."); err != nil {
			return nil, err
		}
		rd := &reader{p: p}
		c := calcium.DefaultDeconvolverConfig()
		c.Output = rd.str("output", c.Output)
		c.G = rd.list("g", nil)
		c.Sn = rd.optNum("sn")
		c.B = rd.optNum("b")
		c.BNonneg = rd.boolean("b_nonneg", c.BNonneg)
		c.OptimizeG = rd.integer("optimize_g", c.OptimizeG)
		c.Penalty = rd.integer("penalty", c.Penalty)
		c.Extra = rd.numPrefix("extra.")
		if rd.err != nil {
			return nil, rd.err
		}
		return calcium.NewDeconvolver(c, cfg.solver, processorOptions(proc)...)
	})

	return r
}

// windowParam resolves "window" in samples or "window_seconds" at the
// processing frame rate. Windows from seconds are rounded to the nearest
// sample count, and up to the next odd count when odd is set.
func windowParam(rd *reader, proc core.ProcessorConfig, def int, odd bool) int {
	if rd.p.Has("window") {
		return rd.integer("window", def)
	}
	sec := rd.num("window_seconds", math.NaN())
	if math.IsNaN(sec) {
		return def
	}
	n := int(math.Round(sec * proc.FrameRate))
	if odd && n%2 == 0 {
		n++
	}
	return n
}

func processorOptions(proc core.ProcessorConfig) []core.ProcessorOption {
	return []core.ProcessorOption{
		core.WithFrameRate(proc.FrameRate),
		core.WithWorkers(proc.Workers),
		core.WithLogger(proc.Logger),
	}
}
