package calcium

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/dsp/filter/savgol"
	"github.com/cwbudde/algo-calcium/trace"
)

// SavGolFilterDetrend removes slow drift by subtracting a Savitzky-Golay
// smoothed baseline.
type SavGolFilterDetrend struct {
	cfg  SavGolDetrendConfig
	proc core.ProcessorConfig
}

var _ Transformer = (*SavGolFilterDetrend)(nil)

// NewSavGolFilterDetrend validates cfg and returns the transformer.
func NewSavGolFilterDetrend(cfg SavGolDetrendConfig, opts ...core.ProcessorOption) (*SavGolFilterDetrend, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &SavGolFilterDetrend{cfg: cfg, proc: core.ApplyProcessorOptions(opts...)}, nil
}

// Name implements Transformer.
func (s *SavGolFilterDetrend) Name() string { return "savgol-detrend" }

// Config returns the configuration.
func (s *SavGolFilterDetrend) Config() SavGolDetrendConfig { return s.cfg }

// Fit implements Transformer.
func (s *SavGolFilterDetrend) Fit(t *trace.Table) error { return checkTable(t) }

// Clone implements Transformer.
func (s *SavGolFilterDetrend) Clone() Transformer {
	c := *s
	return &c
}

// Transform returns x - savgol(x) per column and records the baseline.
func (s *SavGolFilterDetrend) Transform(ctx context.Context, t *trace.Table) (*Result, error) {
	return transformColumns(ctx, s.proc, t, s.column)
}

func (s *SavGolFilterDetrend) column(_ context.Context, name string, x []float64) ([]float64, ColumnParams, error) {
	if s.cfg.Window > len(x) {
		return nil, ColumnParams{}, fmt.Errorf("%w: column %q: window %d exceeds length %d",
			ErrInvalidConfiguration, name, s.cfg.Window, len(x))
	}

	baseline, err := savgol.Filter(x, s.cfg.Window, s.cfg.Order)
	if err != nil {
		return nil, ColumnParams{}, fmt.Errorf("%w: column %q: %w", ErrInvalidConfiguration, name, err)
	}

	return subtract(x, baseline), ColumnParams{Baseline: baseline}, nil
}
