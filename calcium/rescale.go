package calcium

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/trace"
	"github.com/cwbudde/algo-vecmath"
)

// EventRescale scales traces and optionally compresses them with log(1+y).
type EventRescale struct {
	cfg  EventRescaleConfig
	proc core.ProcessorConfig
}

var _ Transformer = (*EventRescale)(nil)

// NewEventRescale validates cfg and returns the transformer.
func NewEventRescale(cfg EventRescaleConfig, opts ...core.ProcessorOption) (*EventRescale, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &EventRescale{cfg: cfg, proc: core.ApplyProcessorOptions(opts...)}, nil
}

// Name implements Transformer.
func (e *EventRescale) Name() string { return "event-rescale" }

// Config returns the configuration.
func (e *EventRescale) Config() EventRescaleConfig { return e.cfg }

// Fit implements Transformer.
func (e *EventRescale) Fit(t *trace.Table) error { return checkTable(t) }

// Clone implements Transformer.
func (e *EventRescale) Clone() Transformer {
	c := *e
	return &c
}

// Transform returns Scale·x, or log(1 + Scale·x) with LogTransform. A
// sample with 1 + Scale·x < 0 fails with ErrInvalidInput; exactly -1 maps
// to -Inf. Column parameters are empty.
func (e *EventRescale) Transform(ctx context.Context, t *trace.Table) (*Result, error) {
	return transformColumns(ctx, e.proc, t, e.column)
}

func (e *EventRescale) column(_ context.Context, name string, x []float64) ([]float64, ColumnParams, error) {
	y := make([]float64, len(x))
	vecmath.ScaleBlock(y, x, e.cfg.Scale)
	if !e.cfg.LogTransform {
		return y, ColumnParams{}, nil
	}

	for i, v := range y {
		arg := 1 + v
		if arg < 0 {
			return nil, ColumnParams{}, fmt.Errorf("%w: column %q row %d: log of negative value %v",
				ErrInvalidInput, name, i, arg)
		}
		y[i] = math.Log(arg)
	}
	return y, ColumnParams{}, nil
}
