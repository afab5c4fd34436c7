package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

func dummyFactory(_ Params, _ core.ProcessorConfig) (calcium.Transformer, error) {
	return calcium.NewEventRescale(calcium.DefaultEventRescaleConfig())
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up factory", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register("rescale", dummyFactory))
		assert.NotNil(t, r.Lookup("rescale"))
		assert.Nil(t, r.Lookup("missing"))
	})

	t.Run("rejects empty type", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, NewRegistry().Register("", dummyFactory))
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, NewRegistry().Register("rescale", nil))
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register("rescale", dummyFactory))
		assert.ErrorIs(t, r.Register("rescale", dummyFactory), errDuplicateType)
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister("rescale", dummyFactory)
		assert.Panics(t, func() { r.MustRegister("rescale", dummyFactory) })
	})
}

func TestDefaultRegistryTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{TypeDeconvolve, TypeEventRescale, TypeMedianDetrend, TypeNormalize, TypeSavGolDetrend},
		DefaultRegistry().Types())
}

func TestDefaultRegistryBuildsConfiguredTransformers(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry(WithSolver(stubSolver()))
	proc := core.ApplyProcessorOptions(core.WithFrameRate(15))

	build := func(stepType string, raw map[string]any) calcium.Transformer {
		t.Helper()
		p, err := parseParams(raw)
		require.NoError(t, err)
		p.Name, p.Type = stepType, stepType
		tr, err := r.build(p, proc)
		require.NoError(t, err)
		return tr
	}

	med := build(TypeMedianDetrend, map[string]any{"window_seconds": 2, "peak_std_threshold": 3.5}).(*calcium.MedianFilterDetrend)
	assert.Equal(t, calcium.MedianDetrendConfig{Window: 31, PeakStdThreshold: 3.5}, med.Config())

	sg := build(TypeSavGolDetrend, map[string]any{"window": 51, "order": 2}).(*calcium.SavGolFilterDetrend)
	assert.Equal(t, calcium.SavGolDetrendConfig{Window: 51, Order: 2}, sg.Config())

	ev := build(TypeEventRescale, map[string]any{"log_transform": false}).(*calcium.EventRescale)
	assert.Equal(t, calcium.EventRescaleConfig{LogTransform: false, Scale: 5}, ev.Config())

	norm := build(TypeNormalize, map[string]any{"window_seconds": 4, "percentile": 20}).(*calcium.Normalizer)
	assert.Equal(t, calcium.NormalizerConfig{Window: 60, Percentile: 20}, norm.Config())

	dec := build(TypeDeconvolve, map[string]any{
		"output":     "denoised",
		"g":          []any{0.95},
		"sn":         0.3,
		"b_nonneg":   false,
		"optimize_g": 1,
		"penalty":    1,
		"extra":      map[any]any{"smin_frac": 0.4, "lags": 3},
	}).(*calcium.Deconvolver)
	cfg := dec.Config()
	assert.Equal(t, calcium.OutputDenoised, cfg.Output)
	assert.Equal(t, []float64{0.95}, cfg.G)
	require.NotNil(t, cfg.Sn)
	assert.InDelta(t, 0.3, *cfg.Sn, 0)
	assert.Nil(t, cfg.B)
	assert.False(t, cfg.BNonneg)
	assert.Equal(t, 1, cfg.OptimizeG)
	assert.Equal(t, 1, cfg.Penalty)
	assert.Equal(t, map[string]float64{"smin_frac": 0.4, "lags": 3}, cfg.Extra)

	defaults := build(TypeDeconvolve, nil).(*calcium.Deconvolver)
	assert.Equal(t, calcium.DefaultDeconvolverConfig(), defaults.Config())
}

func TestDefaultRegistryRejectsBadParams(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry(WithSolver(stubSolver()))
	proc := core.DefaultProcessorConfig()

	tests := []struct {
		name     string
		stepType string
		raw      map[string]any
		want     error
	}{
		{"unknown key", TypeMedianDetrend, map[string]any{"widow": 101}, ErrUnknownParam},
		{"even window", TypeMedianDetrend, map[string]any{"window": 100}, calcium.ErrInvalidConfiguration},
		{"fractional window", TypeNormalize, map[string]any{"window": 10.5}, ErrInvalidParam},
		{"string threshold", TypeMedianDetrend, map[string]any{"peak_std_threshold": "4"}, ErrInvalidParam},
		{"string window seconds", TypeMedianDetrend, map[string]any{"window_seconds": "2s"}, ErrInvalidParam},
		{"fractional order", TypeSavGolDetrend, map[string]any{"window": 101, "order": 2.5}, ErrInvalidParam},
		{"string log flag", TypeEventRescale, map[string]any{"log_transform": "no"}, ErrInvalidParam},
		{"string scale", TypeEventRescale, map[string]any{"scale": "10"}, ErrInvalidParam},
		{"numeric output", TypeDeconvolve, map[string]any{"output": 1}, ErrInvalidParam},
		{"fractional penalty", TypeDeconvolve, map[string]any{"penalty": 0.5}, ErrInvalidParam},
		{"string noise", TypeDeconvolve, map[string]any{"sn": "low"}, ErrInvalidParam},
		{"string decay", TypeDeconvolve, map[string]any{"g": "auto"}, ErrInvalidParam},
		{"string extra", TypeDeconvolve, map[string]any{"extra": map[any]any{"lags": "3"}}, ErrInvalidParam},
		{"order too high", TypeSavGolDetrend, map[string]any{"window": 5, "order": 5}, calcium.ErrInvalidConfiguration},
		{"zero scale", TypeEventRescale, map[string]any{"scale": 0}, calcium.ErrInvalidConfiguration},
		{"bad penalty", TypeDeconvolve, map[string]any{"penalty": 4}, calcium.ErrInvalidConfiguration},
		{"unknown type", "wavelet-denoise", nil, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := parseParams(tt.raw)
			require.NoError(t, err)
			p.Name, p.Type = tt.name, tt.stepType

			_, err = r.build(p, proc)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
