package calcium

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-calcium/deconv"
	"github.com/cwbudde/algo-calcium/internal/testutil"
	"github.com/cwbudde/algo-calcium/trace"
)

const frameRate = 30

var columnNames = []string{"a", "b", "c"}

// simulatedTable returns three simulated calcium traces at 30 fps and their
// ground-truth spike trains. With drift, each trace gets 5·sin(0.05·t) plus
// a unit linear ramp, t in seconds.
func simulatedTable(t testing.TB, drift bool) (*trace.Table, [][]float64) {
	t.Helper()

	const n = 3000
	cols := make([][]float64, len(columnNames))
	truth := make([][]float64, len(columnNames))
	for i := range cols {
		y, _, s := testutil.SimulateCalcium(testutil.Calcium{
			Length:    n,
			FrameRate: frameRate,
			SpikeRate: 0.5,
			Decay:     0.95,
			Baseline:  2,
			Noise:     0.3,
			Seed:      int64(i + 1),
		})
		if drift {
			d := testutil.Drift(5, 0.05, frameRate, n)
			for j := range y {
				y[j] += d[j] + float64(j)/n
			}
		}
		cols[i], truth[i] = y, s
	}

	table, err := trace.New(append([]string(nil), columnNames...), trace.SampleIndex(n, 1.0/frameRate), cols)
	if err != nil {
		t.Fatalf("trace.New: %v", err)
	}
	return table, truth
}

func tableOf(t testing.TB, cols ...[]float64) *trace.Table {
	t.Helper()

	table, err := trace.FromMatrix(cols, nil)
	if err != nil {
		t.Fatalf("trace.FromMatrix: %v", err)
	}
	return table
}

func requireSameShape(t *testing.T, in, out *trace.Table) {
	t.Helper()

	if out.NumColumns() != in.NumColumns() || out.Len() != in.Len() {
		t.Fatalf("shape %dx%d, want %dx%d", out.NumColumns(), out.Len(), in.NumColumns(), in.Len())
	}
	for i, name := range in.Names() {
		if out.Name(i) != name {
			t.Fatalf("column %d = %q, want %q", i, out.Name(i), name)
		}
	}
	testutil.RequireSliceNearlyEqual(t, out.Index(), in.Index(), 0)
}

// stubSolver returns fixed outputs derived from the trace and counts calls.
type stubSolver struct {
	calls atomic.Int64
	err   error
}

func (s *stubSolver) Deconvolve(_ context.Context, y []float64, p deconv.Params) (deconv.Result, error) {
	s.calls.Add(1)
	if s.err != nil {
		return deconv.Result{}, s.err
	}

	c := make([]float64, len(y))
	sp := make([]float64, len(y))
	for i, v := range y {
		c[i] = 2 * v
		sp[i] = v - 1
	}
	return deconv.Result{
		Denoised: c,
		Spikes:   sp,
		Baseline: 0.5,
		Decay:    []float64{0.9},
		Lambda:   float64(p.Penalty) + 0.25,
		Noise:    0.1,
	}, nil
}
