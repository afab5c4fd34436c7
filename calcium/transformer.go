package calcium

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-calcium/trace"
)

// ColumnParams is the per-column record a transform produces alongside its
// output.
type ColumnParams struct {
	// Baseline is the baseline subtracted or divided out by detrenders and
	// the normalizer.
	Baseline []float64
	// Offset is the constant baseline estimated by the deconvolution solver.
	Offset float64
	// Decay holds the autoregressive coefficients used by the solver.
	Decay []float64
	// Lambda is the sparsity penalty weight used by the solver.
	Lambda float64
	// Noise is the noise standard deviation used by the solver.
	Noise float64
}

// FitParams maps column names to their ColumnParams.
type FitParams map[string]ColumnParams

// Result is the outcome of a transform: the new table and the per-column
// parameters computed while producing it.
type Result struct {
	Table  *trace.Table
	Params FitParams
}

// Transformer is one step of a trace preprocessing pipeline.
//
// Transformers fit at transform time: every per-column quantity is computed
// inside Transform and returned in Result.Params, a fresh map per call.
// Fit only checks that a table is acceptable input; it keeps no state, so
// a Transformer is safe for concurrent use.
//
// Transform never reorders, renames, drops or resizes columns.
type Transformer interface {
	// Name returns the registry name of the transformer kind.
	Name() string
	// Fit validates t without computing anything.
	Fit(t *trace.Table) error
	// Transform returns the transformed table and its fit parameters.
	Transform(ctx context.Context, t *trace.Table) (*Result, error)
	// Clone returns an independent transformer with an equal configuration.
	Clone() Transformer
}

// FitTransform calls Fit and then Transform.
func FitTransform(ctx context.Context, tr Transformer, t *trace.Table) (*Result, error) {
	if err := tr.Fit(t); err != nil {
		return nil, err
	}
	return tr.Transform(ctx, t)
}

// checkTable rejects nil tables and tables holding NaN or Inf.
func checkTable(t *trace.Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrInvalidInput)
	}
	if err := t.CheckFinite(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
