package calcium

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/trace"
)

// Deconvolver runs a spike-inference solver on every column and emits
// either the denoised calcium trace or the non-negative spike estimate.
type Deconvolver struct {
	cfg    DeconvolverConfig
	solver deconv.Solver
	proc   core.ProcessorConfig
}

var _ Transformer = (*Deconvolver)(nil)

// NewDeconvolver validates cfg and returns a Deconvolver backed by solver.
// cfg.Output is not checked here; Transform rejects unsupported values.
func NewDeconvolver(cfg DeconvolverConfig, solver deconv.Solver, opts ...core.ProcessorOption) (*Deconvolver, error) {
	if solver == nil {
		return nil, fmt.Errorf("%w: nil solver", ErrInvalidConfiguration)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Params().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return &Deconvolver{cfg: cfg.clone(), solver: solver, proc: core.ApplyProcessorOptions(opts...)}, nil
}

// Name implements Transformer.
func (d *Deconvolver) Name() string { return "deconvolve" }

// Config returns a copy of the configuration.
func (d *Deconvolver) Config() DeconvolverConfig { return d.cfg.clone() }

// Fit implements Transformer.
func (d *Deconvolver) Fit(t *trace.Table) error { return checkTable(t) }

// Clone implements Transformer. The solver is shared; solvers are stateless.
func (d *Deconvolver) Clone() Transformer {
	return &Deconvolver{cfg: d.cfg.clone(), solver: d.solver, proc: d.proc}
}

// Transform deconvolves each column. With OutputSpikes the output is
// max(0, s); with OutputDenoised it is the calcium trace c. Column
// parameters record the solver's baseline, decay, sparsity weight and noise.
//
// An unsupported Output fails the whole call with ErrInvalidConfiguration
// before the solver runs on any column. A solver error on any column fails
// the call with ErrSolver and no output table.
func (d *Deconvolver) Transform(ctx context.Context, t *trace.Table) (*Result, error) {
	if d.cfg.Output != OutputDenoised && d.cfg.Output != OutputSpikes {
		return nil, fmt.Errorf("%w: unsupported output %q", ErrInvalidConfiguration, d.cfg.Output)
	}
	return transformColumns(ctx, d.proc, t, d.column)
}

func (d *Deconvolver) column(ctx context.Context, name string, x []float64) ([]float64, ColumnParams, error) {
	res, err := d.solver.Deconvolve(ctx, x, d.cfg.Params())
	if err != nil {
		return nil, ColumnParams{}, fmt.Errorf("%w: column %q: %w", ErrSolver, name, err)
	}
	if len(res.Denoised) != len(x) || len(res.Spikes) != len(x) {
		return nil, ColumnParams{}, fmt.Errorf("%w: column %q: solver returned %d/%d samples for %d",
			ErrSolver, name, len(res.Denoised), len(res.Spikes), len(x))
	}

	d.proc.Logger.V(2).Info("deconvolved column",
		"column", name, "baseline", res.Baseline, "decay", res.Decay,
		"lambda", res.Lambda, "noise", res.Noise)

	var out []float64
	if d.cfg.Output == OutputDenoised {
		out = slices.Clone(res.Denoised)
	} else {
		out = make([]float64, len(res.Spikes))
		for i, v := range res.Spikes {
			out[i] = math.Max(0, v)
		}
	}

	return out, ColumnParams{
		Offset: res.Baseline,
		Decay:  slices.Clone(res.Decay),
		Lambda: res.Lambda,
		Noise:  res.Noise,
	}, nil
}
