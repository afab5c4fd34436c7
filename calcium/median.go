package calcium

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/dsp/filter/median"
	"github.com/cwbudde/algo-calcium/stats/robust"
	"github.com/cwbudde/algo-calcium/trace"
)

// MedianFilterDetrend removes slow drift by subtracting a median-filtered
// baseline. The baseline is capped at PeakStdThreshold robust standard
// deviations of itself so that long transients are not absorbed into it.
type MedianFilterDetrend struct {
	cfg  MedianDetrendConfig
	proc core.ProcessorConfig
}

var _ Transformer = (*MedianFilterDetrend)(nil)

// NewMedianFilterDetrend validates cfg and returns the transformer.
func NewMedianFilterDetrend(cfg MedianDetrendConfig, opts ...core.ProcessorOption) (*MedianFilterDetrend, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &MedianFilterDetrend{cfg: cfg, proc: core.ApplyProcessorOptions(opts...)}, nil
}

// Name implements Transformer.
func (m *MedianFilterDetrend) Name() string { return "median-detrend" }

// Config returns the configuration.
func (m *MedianFilterDetrend) Config() MedianDetrendConfig { return m.cfg }

// Fit implements Transformer.
func (m *MedianFilterDetrend) Fit(t *trace.Table) error { return checkTable(t) }

// Clone implements Transformer.
func (m *MedianFilterDetrend) Clone() Transformer {
	c := *m
	return &c
}

// Transform returns x - min(medfilt(x), k·robustStd(medfilt(x))) per column
// and records the capped baseline.
func (m *MedianFilterDetrend) Transform(ctx context.Context, t *trace.Table) (*Result, error) {
	return transformColumns(ctx, m.proc, t, m.column)
}

func (m *MedianFilterDetrend) column(_ context.Context, name string, x []float64) ([]float64, ColumnParams, error) {
	mf, err := median.Filter(x, m.cfg.Window)
	if err != nil {
		if errors.Is(err, median.ErrKernelTooLong) || errors.Is(err, median.ErrEvenKernel) {
			return nil, ColumnParams{}, fmt.Errorf("%w: column %q: %w", ErrInvalidConfiguration, name, err)
		}
		return nil, ColumnParams{}, err
	}

	limit := m.cfg.PeakStdThreshold * robust.Std(mf)
	for i, v := range mf {
		mf[i] = math.Min(v, limit)
	}

	return subtract(x, mf), ColumnParams{Baseline: mf}, nil
}
