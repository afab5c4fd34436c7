package calcium

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/dsp/rolling"
	"github.com/cwbudde/algo-calcium/trace"
)

// Normalizer converts fluorescence to dF/F against a rolling-percentile
// baseline.
//
// Where the centered window does not fit inside the trace the baseline is
// taken from the nearest position where it does. A zero baseline is not
// guarded: dF/F follows IEEE division and becomes ±Inf or NaN there.
type Normalizer struct {
	cfg  NormalizerConfig
	proc core.ProcessorConfig
}

var _ Transformer = (*Normalizer)(nil)

// NewNormalizer validates cfg and returns the transformer.
func NewNormalizer(cfg NormalizerConfig, opts ...core.ProcessorOption) (*Normalizer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Normalizer{cfg: cfg, proc: core.ApplyProcessorOptions(opts...)}, nil
}

// Name implements Transformer.
func (n *Normalizer) Name() string { return "normalize" }

// Config returns the configuration.
func (n *Normalizer) Config() NormalizerConfig { return n.cfg }

// Fit implements Transformer.
func (n *Normalizer) Fit(t *trace.Table) error { return checkTable(t) }

// Clone implements Transformer.
func (n *Normalizer) Clone() Transformer {
	c := *n
	return &c
}

// Transform returns (x - b) / b per column, b being the edge-filled rolling
// percentile, and records b.
func (n *Normalizer) Transform(ctx context.Context, t *trace.Table) (*Result, error) {
	return transformColumns(ctx, n.proc, t, n.column)
}

func (n *Normalizer) column(_ context.Context, name string, x []float64) ([]float64, ColumnParams, error) {
	b, err := rolling.Baseline(x, n.cfg.Window, n.cfg.Percentile)
	if err != nil {
		return nil, ColumnParams{}, fmt.Errorf("%w: column %q: %w", ErrInvalidConfiguration, name, err)
	}

	dff := make([]float64, len(x))
	for i, v := range x {
		dff[i] = (v - b[i]) / b[i]
	}
	return dff, ColumnParams{Baseline: b}, nil
}
