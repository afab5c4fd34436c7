package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-calcium/calcium"
	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/dsp/core"
)

func TestChainFromConfigRuns(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	logger := testr.NewWithOptions(t, testr.Options{Verbosity: 1})
	c, err := FromConfig(cfg, DefaultRegistry(WithSolver(stubSolver())), core.WithLogger(logger))
	require.NoError(t, err)

	in := driftTable(t)
	res, err := c.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, in.Names(), res.Table.Names())
	assert.Equal(t, in.Len(), res.Table.Len())

	require.Len(t, res.Steps, 2, "bypassed step must not run")
	assert.Equal(t, TypeMedianDetrend, res.Steps[0].Name)
	assert.Equal(t, TypeDeconvolve, res.Steps[1].Name)
	assert.Len(t, res.Steps[0].Params["n0"].Baseline, in.Len())
	assert.Equal(t, []float64{0.9}, res.Steps[1].Params["n1"].Decay)

	for i := range res.Table.NumColumns() {
		for _, v := range res.Table.Column(i) {
			require.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestChainAllBypassedReturnsInput(t *testing.T) {
	t.Parallel()

	med, err := calcium.NewMedianFilterDetrend(calcium.DefaultMedianDetrendConfig())
	require.NoError(t, err)

	c, err := New([]Step{{Transformer: med, Bypassed: true}})
	require.NoError(t, err)

	in := driftTable(t)
	res, err := c.Transform(context.Background(), in)
	require.NoError(t, err)
	assert.Same(t, in, res.Table)
	assert.Empty(t, res.Params)
}

func TestChainWrapsStepErrors(t *testing.T) {
	t.Parallel()

	failing := deconv.SolverFunc(func(context.Context, []float64, deconv.Params) (deconv.Result, error) {
		return deconv.Result{}, deconv.ErrNotConverged
	})
	dec, err := calcium.NewDeconvolver(calcium.DefaultDeconvolverConfig(), failing)
	require.NoError(t, err)

	c, err := New([]Step{{Name: "spikes", Transformer: dec}})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), driftTable(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, calcium.ErrSolver)
	assert.ErrorIs(t, err, deconv.ErrNotConverged)
	assert.Contains(t, err.Error(), `step "spikes"`)
}

func TestChainNewValidation(t *testing.T) {
	t.Parallel()

	norm, err := calcium.NewNormalizer(calcium.DefaultNormalizerConfig())
	require.NoError(t, err)

	_, err = New([]Step{{Name: "x"}})
	assert.ErrorIs(t, err, ErrInvalidChain)

	_, err = New([]Step{{Transformer: norm}, {Transformer: norm.Clone()}})
	assert.ErrorIs(t, err, ErrInvalidChain)

	_, err = FromConfig(nil, DefaultRegistry())
	assert.ErrorIs(t, err, ErrInvalidChain)
}

func TestChainFromConfigStepErrors(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte("steps:\n  - name: first\n    type: normalize\n    params: {window: 0}\n"))
	require.NoError(t, err)

	_, err = FromConfig(cfg, DefaultRegistry())
	assert.ErrorIs(t, err, calcium.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), `step "first"`)

	cfg, err = ParseConfig([]byte("steps:\n  - type: fourier\n"))
	require.NoError(t, err)

	_, err = FromConfig(cfg, DefaultRegistry())
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestChainFromConfigRejectsMistypedParams(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{
		"steps:\n  - type: savgol-detrend\n    params: {window: 101, order: 2.5}\n",
		"steps:\n  - type: event-rescale\n    params: {log_transform: \"no\", scale: \"10\"}\n",
	} {
		cfg, err := ParseConfig([]byte(doc))
		require.NoError(t, err)

		_, err = FromConfig(cfg, DefaultRegistry())
		assert.ErrorIs(t, err, ErrInvalidParam, doc)
		assert.ErrorIs(t, err, calcium.ErrInvalidConfiguration, doc)
	}
}

func TestChainIsTransformer(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte("steps:\n  - type: savgol-detrend\n    params: {window: 31}\n  - type: event-rescale\n    params: {log_transform: false, scale: 2}\n"))
	require.NoError(t, err)

	c, err := FromConfig(cfg, DefaultRegistry())
	require.NoError(t, err)

	var tr calcium.Transformer = c
	res, err := calcium.FitTransform(context.Background(), tr, driftTable(t))
	require.NoError(t, err)
	assert.Len(t, res.Params, 2)
	assert.Equal(t, "chain", tr.Name())
}

func TestChainClone(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	c, err := FromConfig(cfg, DefaultRegistry(WithSolver(stubSolver())))
	require.NoError(t, err)

	clone, ok := c.Clone().(*Chain)
	require.True(t, ok)

	orig, copied := c.Steps(), clone.Steps()
	require.Len(t, copied, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Name, copied[i].Name)
		assert.Equal(t, orig[i].Bypassed, copied[i].Bypassed)
		assert.NotSame(t, orig[i].Transformer, copied[i].Transformer)
	}

	in := driftTable(t)
	a, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	b, err := clone.Run(context.Background(), in)
	require.NoError(t, err)
	for i := range a.Table.NumColumns() {
		assert.Equal(t, a.Table.Column(i), b.Table.Column(i))
	}
}

func TestChainCanceled(t *testing.T) {
	t.Parallel()

	norm, err := calcium.NewNormalizer(calcium.NormalizerConfig{Window: 30, Percentile: 8})
	require.NoError(t, err)
	c, err := New([]Step{{Transformer: norm}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Run(ctx, driftTable(t))
	assert.True(t, errors.Is(err, context.Canceled))
}
