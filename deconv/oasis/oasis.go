package oasis

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/stats/robust"
)

// Keys accepted in deconv.Params.Extra.
const (
	KeyLags         = "lags"
	KeyMaxIter      = "max_iter"
	KeyBaselineIter = "baseline_iter"
	KeySminFrac     = "smin_frac"
)

const (
	defaultLags         = 5
	defaultMaxIter      = 30
	defaultBaselineIter = 3
	defaultSminFrac     = 0.5

	// Percentile of the trace used as the initial baseline guess.
	initialBaselinePercentile = 15

	// Upper bound of the penalty search.
	maxLambda = 1e6

	// Spike amplitudes at or below this count as zero when picking smin.
	spikeFloor = 1e-9

	// Initial relative step of the decay refinement search.
	decayStep = 0.02
)

// Config holds solver settings that Params.Extra may override per call.
type Config struct {
	// Lags is the number of autocovariance lags used to estimate the decay.
	Lags int
	// MaxIter is the number of bisection steps of the penalty search.
	MaxIter int
	// BaselineIter is the number of alternating baseline refinements.
	BaselineIter int
	// SminFrac scales the median spike amplitude into the minimum spike
	// size used by the L0 refinement.
	SminFrac float64
}

// DefaultConfig returns the solver defaults.
func DefaultConfig() Config {
	return Config{
		Lags:         defaultLags,
		MaxIter:      defaultMaxIter,
		BaselineIter: defaultBaselineIter,
		SminFrac:     defaultSminFrac,
	}
}

// Option mutates a Config.
type Option func(*Config)

// WithLags sets the autocovariance lag count.
func WithLags(lags int) Option {
	return func(c *Config) {
		if lags > 0 {
			c.Lags = lags
		}
	}
}

// WithMaxIter sets the number of bisection steps.
func WithMaxIter(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIter = n
		}
	}
}

// WithBaselineIter sets the number of baseline refinements.
func WithBaselineIter(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BaselineIter = n
		}
	}
}

// WithSminFrac sets the L0 minimum spike fraction.
func WithSminFrac(frac float64) Option {
	return func(c *Config) {
		if frac >= 0 {
			c.SminFrac = frac
		}
	}
}

// Solver is an AR(1) OASIS spike-inference solver. It is stateless and safe
// for concurrent use.
type Solver struct {
	cfg Config
}

var _ deconv.Solver = (*Solver)(nil)

// New returns a Solver with the given options applied to DefaultConfig.
func New(opts ...Option) *Solver {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Solver{cfg: cfg}
}

// Config returns the solver defaults.
func (s *Solver) Config() Config {
	return s.cfg
}

// Deconvolve infers the calcium trace c and spikes s of y ≈ b + c + noise
// where c follows c[t] = g·c[t-1] + s[t].
//
// Missing parameters are estimated: the noise level from the Welch PSD, the
// decay from the autocovariance, the baseline by alternating with the
// solve. With the L1 penalty the sparsity weight is the smallest one whose
// residual still reaches the noise level (constrained deconvolution). With
// the L0 penalty that solution is refined with a minimum spike size of
// SminFrac times its median non-zero spike, and Lambda reports the weight
// of the L1 stage.
func (s *Solver) Deconvolve(ctx context.Context, y []float64, p deconv.Params) (deconv.Result, error) {
	if err := deconv.CheckTrace(y); err != nil {
		return deconv.Result{}, err
	}
	if err := p.Validate(); err != nil {
		return deconv.Result{}, err
	}
	cfg, err := s.resolve(p.Extra)
	if err != nil {
		return deconv.Result{}, err
	}

	sn, err := s.noise(y, p)
	if err != nil {
		return deconv.Result{}, err
	}
	g, err := s.decay(y, p, cfg)
	if err != nil {
		return deconv.Result{}, err
	}

	st := &state{
		y:      y,
		z:      make([]float64, len(y)),
		solver: newAR1(len(y)),
		g:      g,
		target: sn * sn * float64(len(y)),
		cfg:    cfg,
	}

	b, fixedB := 0.0, p.B != nil
	if fixedB {
		b = *p.B
	} else {
		b = robust.Percentile(y, initialBaselinePercentile)
		if p.BNonneg {
			b = math.Max(b, 0)
		}
	}

	rounds := 1
	if !fixedB {
		rounds = cfg.BaselineIter
	}

	var (
		c   []float64
		lam float64
	)
	for range rounds {
		if err := ctx.Err(); err != nil {
			return deconv.Result{}, err
		}
		st.setBaseline(b)

		lam, err = st.searchLambda(ctx, sn)
		if err != nil {
			return deconv.Result{}, err
		}
		for range p.OptimizeG {
			st.refineDecay(lam)
		}
		c = st.solver.solve(st.z, st.g, lam, 0)

		if !fixedB {
			b = meanResidual(y, c)
			if p.BNonneg {
				b = math.Max(b, 0)
			}
		}
	}
	st.setBaseline(b)
	c = st.solver.solve(st.z, st.g, lam, 0)

	if p.Penalty == deconv.PenaltyL0 {
		smin := cfg.SminFrac * medianSpike(spikes(c, st.g))
		c = st.solver.solve(st.z, st.g, 0, smin)
	}

	c = slices.Clone(c)
	sp := spikes(c, st.g)
	for i := range c {
		if !core.IsFinite(c[i]) || math.IsNaN(sp[i]) {
			return deconv.Result{}, fmt.Errorf("%w: non-finite output at sample %d", deconv.ErrNotConverged, i)
		}
	}

	return deconv.Result{
		Denoised: c,
		Spikes:   sp,
		Baseline: b,
		Decay:    []float64{st.g},
		Lambda:   lam,
		Noise:    sn,
	}, nil
}

// resolve applies Extra overrides to the solver defaults.
func (s *Solver) resolve(extra map[string]float64) (Config, error) {
	cfg := s.cfg
	for key, v := range extra {
		if !core.IsFinite(v) {
			return cfg, fmt.Errorf("%w: %s = %v", deconv.ErrInvalidParams, key, v)
		}
		switch key {
		case KeyLags, KeyMaxIter, KeyBaselineIter:
			n := int(v)
			if float64(n) != v || n < 1 {
				return cfg, fmt.Errorf("%w: %s must be a positive integer, got %v", deconv.ErrInvalidParams, key, v)
			}
			switch key {
			case KeyLags:
				cfg.Lags = n
			case KeyMaxIter:
				cfg.MaxIter = n
			default:
				cfg.BaselineIter = n
			}
		case KeySminFrac:
			if v < 0 {
				return cfg, fmt.Errorf("%w: %s must be >= 0, got %v", deconv.ErrInvalidParams, key, v)
			}
			cfg.SminFrac = v
		default:
			return cfg, fmt.Errorf("%w: unknown key %q", deconv.ErrInvalidParams, key)
		}
	}
	return cfg, nil
}

func (s *Solver) noise(y []float64, p deconv.Params) (float64, error) {
	if p.Sn != nil {
		return *p.Sn, nil
	}
	return NoiseLevel(y)
}

func (s *Solver) decay(y []float64, p deconv.Params, cfg Config) (float64, error) {
	switch len(p.G) {
	case 0:
		if len(y) < 3 {
			return 0, fmt.Errorf("%w: %d samples are too few to estimate the decay", deconv.ErrInvalidTrace, len(y))
		}
		return EstimateDecay(y, cfg.Lags), nil
	case 1:
		g := p.G[0]
		if g < 0 || g >= 1 {
			return 0, fmt.Errorf("%w: decay %v outside [0, 1)", deconv.ErrInvalidParams, g)
		}
		return g, nil
	default:
		return 0, fmt.Errorf("%w: AR(%d)", deconv.ErrUnsupportedOrder, len(p.G))
	}
}

// state is the per-call state of one Deconvolve invocation.
type state struct {
	y      []float64
	z      []float64 // y minus the current baseline
	solver *ar1
	g      float64
	target float64 // residual budget sn²·T
	cfg    Config
}

func (r *state) setBaseline(b float64) {
	for i, v := range r.y {
		r.z[i] = v - b
	}
}

func (r *state) residual(lam float64) float64 {
	return rss(r.z, r.solver.solve(r.z, r.g, lam, 0))
}

// searchLambda returns the largest sparsity weight whose residual stays
// within the noise budget, or 0 when even the unpenalized fit exceeds it.
func (r *state) searchLambda(ctx context.Context, sn float64) (float64, error) {
	if r.residual(0) > r.target {
		return 0, nil
	}

	lo, hi := 0.0, sn
	if !(hi > 0) {
		hi = 1
	}
	for hi < maxLambda && r.residual(hi) <= r.target {
		lo, hi = hi, 2*hi
	}
	for range r.cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := (lo + hi) / 2
		if r.residual(mid) <= r.target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// refineDecay performs a coarse-to-fine local search on g that minimizes
// the residual at fixed lam.
func (r *state) refineDecay(lam float64) {
	best := r.residual(lam)
	step := decayStep
	for step > 1e-4 {
		improved := false
		for _, cand := range []float64{r.g * (1 - step), math.Min(r.g*(1+step), MaxDecay)} {
			if cand == r.g {
				continue
			}
			prev := r.g
			r.g = cand
			if res := r.residual(lam); res < best {
				best = res
				improved = true
				break
			}
			r.g = prev
		}
		if !improved {
			step /= 2
		}
	}
}

func meanResidual(y, c []float64) float64 {
	d := make([]float64, len(y))
	for i, v := range y {
		d[i] = v - c[i]
	}
	return robust.Mean(d)
}

func medianSpike(s []float64) float64 {
	nz := make([]float64, 0, len(s))
	for _, v := range s {
		if v > spikeFloor {
			nz = append(nz, v)
		}
	}
	if len(nz) == 0 {
		return 0
	}
	return robust.Median(nz)
}
