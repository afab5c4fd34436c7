package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/trace"
)

// Step is one transformer in a chain.
type Step struct {
	Name        string
	Transformer calcium.Transformer
	Bypassed    bool
}

// StepResult holds the fit parameters one active step produced.
type StepResult struct {
	Name   string
	Type   string
	Params calcium.FitParams
}

// Result is the outcome of running a chain.
type Result struct {
	// Table is the output of the last active step, or the input table if
	// every step is bypassed.
	Table *trace.Table
	// Steps lists the active steps in execution order.
	Steps []StepResult
}

// Chain runs transformers in sequence, feeding each step's output table to
// the next. It is itself a calcium.Transformer.
type Chain struct {
	steps  []Step
	logger logr.Logger
}

var _ calcium.Transformer = (*Chain)(nil)

// New creates a chain from steps. Step names default to the transformer
// name and must be unique.
func New(steps []Step, opts ...core.ProcessorOption) (*Chain, error) {
	proc := core.ApplyProcessorOptions(opts...)

	own := make([]Step, len(steps))
	seen := make(map[string]struct{}, len(steps))
	for i, s := range steps {
		if s.Transformer == nil {
			return nil, fmt.Errorf("%w: step %d has no transformer", ErrInvalidChain, i)
		}
		if s.Name == "" {
			s.Name = s.Transformer.Name()
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate step name %q", ErrInvalidChain, s.Name)
		}
		seen[s.Name] = struct{}{}
		own[i] = s
	}

	return &Chain{steps: own, logger: proc.Logger}, nil
}

// FromConfig builds a chain from a validated Config using registry. The
// config's workers and frame rate apply first; opts override them.
func FromConfig(cfg *Config, registry *Registry, opts ...core.ProcessorOption) (*Chain, error) {
	if cfg == nil || registry == nil {
		return nil, fmt.Errorf("%w: nil config or registry", ErrInvalidChain)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	all := make([]core.ProcessorOption, 0, len(opts)+2)
	if cfg.Workers > 0 {
		all = append(all, core.WithWorkers(cfg.Workers))
	}
	all = append(all, core.WithFrameRate(cfg.FrameRate))
	all = append(all, opts...)
	proc := core.ApplyProcessorOptions(all...)

	steps := make([]Step, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		p, err := parseParams(sc.Params)
		if err != nil {
			return nil, fmt.Errorf("chain: step %q: %w", sc.stepName(), err)
		}
		p.Name, p.Type, p.Bypassed = sc.stepName(), sc.Type, sc.Bypassed

		tr, err := registry.build(p, proc)
		if err != nil {
			return nil, fmt.Errorf("chain: step %q: %w", p.Name, err)
		}
		steps[i] = Step{Name: p.Name, Transformer: tr, Bypassed: p.Bypassed}
	}

	return New(steps, all...)
}

// Steps returns a copy of the chain's steps.
func (c *Chain) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// Name implements calcium.Transformer.
func (c *Chain) Name() string { return "chain" }

// Fit validates t with every active step. Since steps fit at transform
// time this only checks that t is acceptable input.
func (c *Chain) Fit(t *trace.Table) error {
	for _, s := range c.steps {
		if s.Bypassed {
			continue
		}
		if err := s.Transformer.Fit(t); err != nil {
			return fmt.Errorf("chain: step %q: %w", s.Name, err)
		}
	}
	return nil
}

// Run executes the active steps in order and returns the final table with
// the parameters of every step. An error from a step is wrapped with its
// name and stops the chain.
func (c *Chain) Run(ctx context.Context, t *trace.Table) (*Result, error) {
	res := &Result{Table: t}
	for _, s := range c.steps {
		if s.Bypassed {
			c.logger.V(1).Info("skipping bypassed step", "step", s.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.logger.V(1).Info("running step", "step", s.Name, "type", s.Transformer.Name())
		start := time.Now()

		out, err := s.Transformer.Transform(ctx, res.Table)
		if err != nil {
			return nil, fmt.Errorf("chain: step %q: %w", s.Name, err)
		}

		c.logger.V(1).Info("finished step", "step", s.Name,
			"columns", out.Table.NumColumns(), "samples", out.Table.Len(),
			"elapsed", time.Since(start))

		res.Table = out.Table
		res.Steps = append(res.Steps, StepResult{Name: s.Name, Type: s.Transformer.Name(), Params: out.Params})
	}
	return res, nil
}

// Transform implements calcium.Transformer. The returned parameters are
// those of the last active step, or empty if every step is bypassed.
func (c *Chain) Transform(ctx context.Context, t *trace.Table) (*calcium.Result, error) {
	res, err := c.Run(ctx, t)
	if err != nil {
		return nil, err
	}

	params := calcium.FitParams{}
	if n := len(res.Steps); n > 0 {
		params = res.Steps[n-1].Params
	}
	return &calcium.Result{Table: res.Table, Params: params}, nil
}

// Clone implements calcium.Transformer by cloning every step.
func (c *Chain) Clone() calcium.Transformer {
	steps := make([]Step, len(c.steps))
	for i, s := range c.steps {
		steps[i] = Step{Name: s.Name, Transformer: s.Transformer.Clone(), Bypassed: s.Bypassed}
	}
	return &Chain{steps: steps, logger: c.logger}
}
