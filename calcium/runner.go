package calcium

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-calcium/dsp/core"
	"github.com/cwbudde/algo-calcium/trace"
	"github.com/cwbudde/algo-vecmath"
)

// columnFunc computes one output column and its parameters. It must not
// modify x.
type columnFunc func(ctx context.Context, name string, x []float64) ([]float64, ColumnParams, error)

// transformColumns applies fn to every column of t, running up to
// proc.Workers columns at a time. Each column writes only its own slot and
// the output table is built after all columns succeed, so an error never
// yields a partially transformed table.
func transformColumns(ctx context.Context, proc core.ProcessorConfig, t *trace.Table, fn columnFunc) (*Result, error) {
	if err := checkTable(t); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := t.NumColumns()
	outs := make([][]float64, n)
	params := make([]ColumnParams, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(proc.Workers, 1))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, p, err := fn(gctx, t.Name(i), t.Column(i))
			if err != nil {
				return err
			}
			outs[i], params[i] = out, p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, err := t.WithColumns(outs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	fp := make(FitParams, n)
	for i := range n {
		fp[t.Name(i)] = params[i]
	}
	return &Result{Table: table, Params: fp}, nil
}

// subtract returns x - b.
func subtract(x, b []float64) []float64 {
	out := make([]float64, len(x))
	vecmath.ScaleBlock(out, b, -1)
	vecmath.AddBlockInPlace(out, x)
	return out
}
