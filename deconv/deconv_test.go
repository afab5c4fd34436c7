package deconv

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "defaults", params: DefaultParams()},
		{name: "l1 with fixed values", params: Params{G: []float64{0.9}, Sn: ptr(0.2), B: ptr(-1), Penalty: PenaltyL1}},
		{name: "bad penalty", params: Params{Penalty: 2}, wantErr: true},
		{name: "negative optimize_g", params: Params{OptimizeG: -1}, wantErr: true},
		{name: "zero sn", params: Params{Sn: ptr(0)}, wantErr: true},
		{name: "nan sn", params: Params{Sn: ptr(math.NaN())}, wantErr: true},
		{name: "inf b", params: Params{B: ptr(math.Inf(1))}, wantErr: true},
		{name: "nan g", params: Params{G: []float64{math.NaN()}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParams) {
					t.Fatalf("Validate() = %v, want ErrInvalidParams", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
		})
	}
}

func TestParamsCloneIsDeep(t *testing.T) {
	t.Parallel()

	p := Params{G: []float64{0.9}, Sn: ptr(0.3), B: ptr(1), Extra: map[string]float64{"lags": 5}}
	c := p.Clone()

	p.G[0] = 0.1
	*p.Sn = 9
	*p.B = 9
	p.Extra["lags"] = 1

	if c.G[0] != 0.9 || *c.Sn != 0.3 || *c.B != 1 || c.Extra["lags"] != 5 {
		t.Fatalf("clone shares state with original: %+v", c)
	}
}

func TestSolverFunc(t *testing.T) {
	t.Parallel()

	var s Solver = SolverFunc(func(_ context.Context, y []float64, p Params) (Result, error) {
		return Result{Denoised: y, Lambda: float64(p.Penalty)}, nil
	})

	res, err := s.Deconvolve(context.Background(), []float64{1, 2}, Params{Penalty: PenaltyL1})
	if err != nil {
		t.Fatalf("Deconvolve: %v", err)
	}
	if len(res.Denoised) != 2 || res.Lambda != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCheckTrace(t *testing.T) {
	t.Parallel()

	if err := CheckTrace([]float64{0, 1, -2}); err != nil {
		t.Fatalf("CheckTrace finite: %v", err)
	}
	for _, y := range [][]float64{nil, {1, math.NaN()}, {math.Inf(-1)}} {
		if err := CheckTrace(y); !errors.Is(err, ErrInvalidTrace) {
			t.Errorf("CheckTrace(%v) = %v, want ErrInvalidTrace", y, err)
		}
	}

	err := CheckTrace([]float64{0, 1, math.Inf(1), math.NaN()})
	if err == nil || !strings.Contains(err.Error(), "sample 2") {
		t.Fatalf("expected first non-finite at sample 2, got %v", err)
	}
}
