package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/internal/testutil"
	"github.com/cwbudde/algo-calcium/trace"
)

// stubSolver returns the trace itself as calcium and its first difference
// as spikes.
func stubSolver() deconv.Solver {
	return deconv.SolverFunc(func(_ context.Context, y []float64, _ deconv.Params) (deconv.Result, error) {
		c := append([]float64(nil), y...)
		s := make([]float64, len(y))
		for i := 1; i < len(y); i++ {
			s[i] = y[i] - y[i-1]
		}
		return deconv.Result{Denoised: c, Spikes: s, Decay: []float64{0.9}, Noise: 0.1}, nil
	})
}

func driftTable(t testing.TB) *trace.Table {
	t.Helper()

	const n = 600
	cols := make([][]float64, 2)
	for i := range cols {
		y, _, _ := testutil.SimulateCalcium(testutil.Calcium{
			Length: n, FrameRate: 30, SpikeRate: 0.5, Decay: 0.95, Baseline: 2, Noise: 0.3, Seed: int64(i + 10),
		})
		d := testutil.Drift(5, 0.05, 30, n)
		for j := range y {
			y[j] += d[j]
		}
		cols[i] = y
	}

	table, err := trace.New([]string{"n0", "n1"}, trace.SampleIndex(n, 1.0/30), cols)
	require.NoError(t, err)
	return table
}
