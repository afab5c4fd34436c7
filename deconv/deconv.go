package deconv

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/cwbudde/algo-calcium/dsp/core"
)

var (
	// ErrInvalidTrace is returned for empty traces or traces holding NaN or Inf.
	ErrInvalidTrace = errors.New("deconv: invalid trace")

	// ErrInvalidParams is returned for out-of-range or unknown parameters.
	ErrInvalidParams = errors.New("deconv: invalid parameters")

	// ErrUnsupportedOrder is returned when a solver cannot handle the
	// autoregressive order implied by Params.G.
	ErrUnsupportedOrder = errors.New("deconv: unsupported autoregressive order")

	// ErrNotConverged is returned when an iterative solver fails to reach
	// its stopping criterion.
	ErrNotConverged = errors.New("deconv: solver did not converge")
)

// Penalty selects the sparsity penalty.
const (
	PenaltyL0 = 0
	PenaltyL1 = 1
)

// Params are the solver inputs besides the trace itself. Nil or empty
// fields ask the solver to estimate the value from the data.
type Params struct {
	// G holds the autoregressive decay coefficients. Empty means estimate.
	G []float64
	// Sn is the noise standard deviation. Nil means estimate.
	Sn *float64
	// B is the constant baseline. Nil means estimate.
	B *float64
	// BNonneg constrains an estimated baseline to be non-negative.
	BNonneg bool
	// OptimizeG is the number of refinement rounds applied to G.
	OptimizeG int
	// Penalty is PenaltyL0 or PenaltyL1.
	Penalty int
	// Extra holds solver-specific numeric overrides.
	Extra map[string]float64
}

// DefaultParams returns fully estimated parameters with a non-negative
// baseline and the L0 penalty.
func DefaultParams() Params {
	return Params{BNonneg: true, Penalty: PenaltyL0}
}

// Validate checks the solver-independent constraints.
func (p Params) Validate() error {
	if p.Penalty != PenaltyL0 && p.Penalty != PenaltyL1 {
		return fmt.Errorf("%w: penalty %d", ErrInvalidParams, p.Penalty)
	}
	if p.OptimizeG < 0 {
		return fmt.Errorf("%w: optimize_g %d", ErrInvalidParams, p.OptimizeG)
	}
	if p.Sn != nil && (!(*p.Sn > 0) || !core.IsFinite(*p.Sn)) {
		return fmt.Errorf("%w: sn %v", ErrInvalidParams, *p.Sn)
	}
	if p.B != nil && !core.IsFinite(*p.B) {
		return fmt.Errorf("%w: b %v", ErrInvalidParams, *p.B)
	}
	for i, g := range p.G {
		if !core.IsFinite(g) {
			return fmt.Errorf("%w: g[%d] = %v", ErrInvalidParams, i, g)
		}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := p
	if p.G != nil {
		out.G = append([]float64(nil), p.G...)
	}
	if p.Sn != nil {
		v := *p.Sn
		out.Sn = &v
	}
	if p.B != nil {
		v := *p.B
		out.B = &v
	}
	if p.Extra != nil {
		out.Extra = maps.Clone(p.Extra)
	}
	return out
}

// Result is the solver output for one trace.
type Result struct {
	// Denoised is the inferred calcium concentration, len(trace) samples.
	Denoised []float64
	// Spikes is the inferred spike signal, len(trace) samples.
	Spikes []float64
	// Baseline is the constant baseline removed from the trace.
	Baseline float64
	// Decay holds the autoregressive coefficients used.
	Decay []float64
	// Lambda is the sparsity penalty weight used.
	Lambda float64
	// Noise is the noise standard deviation used.
	Noise float64
}

// Solver infers calcium and spikes from a single fluorescence trace.
// Implementations must not retain or modify y.
type Solver interface {
	Deconvolve(ctx context.Context, y []float64, p Params) (Result, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, y []float64, p Params) (Result, error)

// Deconvolve calls f.
func (f SolverFunc) Deconvolve(ctx context.Context, y []float64, p Params) (Result, error) {
	return f(ctx, y, p)
}

// CheckTrace returns ErrInvalidTrace for an empty trace or one holding a
// non-finite sample.
func CheckTrace(y []float64) error {
	if len(y) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTrace)
	}
	if i := core.FirstNonFinite(y); i >= 0 {
		return fmt.Errorf("%w: non-finite value %v at sample %d", ErrInvalidTrace, y[i], i)
	}
	return nil
}
