package trace

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	idx := []float64{0, 1, 2}

	tests := []struct {
		name    string
		names   []string
		columns [][]float64
	}{
		{"count mismatch", []string{"a"}, [][]float64{{1, 2, 3}, {4, 5, 6}}},
		{"empty name", []string{""}, [][]float64{{1, 2, 3}}},
		{"duplicate name", []string{"a", "a"}, [][]float64{{1, 2, 3}, {4, 5, 6}}},
		{"ragged column", []string{"a", "b"}, [][]float64{{1, 2, 3}, {4, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.names, idx, tt.columns)
			if !errors.Is(err, ErrInvalidTable) {
				t.Fatalf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	t.Parallel()

	tbl, err := New([]string{"b", "a"}, []float64{0, 0.5}, [][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if tbl.Len() != 2 || tbl.NumColumns() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", tbl.Len(), tbl.NumColumns())
	}
	if got := tbl.Names(); got[0] != "b" || got[1] != "a" {
		t.Fatalf("names = %v, want [b a]", got)
	}

	col, ok := tbl.ColumnByName("a")
	if !ok || col[0] != 3 || col[1] != 4 {
		t.Fatalf("ColumnByName(a) = %v, %v", col, ok)
	}
	if _, ok := tbl.ColumnByName("zzz"); ok {
		t.Fatal("ColumnByName found a missing column")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	tbl, _ := New([]string{"a"}, []float64{0, 1}, [][]float64{{1, 2}})
	cp := tbl.Clone()
	cp.Column(0)[0] = 99

	if tbl.Column(0)[0] != 1 {
		t.Fatal("Clone shares column storage with the original")
	}
	if cp.Name(0) != "a" {
		t.Fatalf("clone name = %q", cp.Name(0))
	}
}

func TestWithColumnsPreservesShape(t *testing.T) {
	t.Parallel()

	tbl, _ := New([]string{"x", "y"}, []float64{0, 1, 2}, [][]float64{{1, 2, 3}, {4, 5, 6}})

	out, err := tbl.WithColumns([][]float64{{0, 0, 0}, {1, 1, 1}})
	if err != nil {
		t.Fatalf("WithColumns: %v", err)
	}
	if out.Name(0) != "x" || out.Name(1) != "y" || out.Len() != 3 {
		t.Fatalf("shape not preserved: %v len=%d", out.Names(), out.Len())
	}

	if _, err := tbl.WithColumns([][]float64{{1, 2, 3}}); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for missing column, got %v", err)
	}
	if _, err := tbl.WithColumns([][]float64{{1, 2}, {3, 4}}); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for short columns, got %v", err)
	}
}

func TestCheckFinite(t *testing.T) {
	t.Parallel()

	ok, _ := New([]string{"a"}, []float64{0, 1}, [][]float64{{1, 2}})
	if err := ok.CheckFinite(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		tbl, _ := New([]string{"a"}, []float64{0, 1}, [][]float64{{1, bad}})
		if err := tbl.CheckFinite(); !errors.Is(err, ErrNonFinite) {
			t.Fatalf("value %v: expected ErrNonFinite, got %v", bad, err)
		}
	}

	tbl, _ := New([]string{"a", "b"}, []float64{0, 1, 2}, [][]float64{{1, 2, 3}, {4, math.NaN(), math.Inf(1)}})
	err := tbl.CheckFinite()
	if err == nil || !strings.Contains(err.Error(), `column "b" row 1`) {
		t.Fatalf("expected first non-finite at column b row 1, got %v", err)
	}
}

func TestFromMatrix(t *testing.T) {
	t.Parallel()

	m := [][]float64{{1, 2, 3}, {4, 5, 6}}
	tbl, err := FromMatrix(m, nil)
	if err != nil {
		t.Fatalf("FromMatrix: %v", err)
	}

	if tbl.Name(0) != "0" || tbl.Name(1) != "1" {
		t.Fatalf("names = %v", tbl.Names())
	}
	if idx := tbl.Index(); idx[2] != 2 {
		t.Fatalf("index = %v", idx)
	}

	m[0][0] = 42
	if tbl.Column(0)[0] != 1 {
		t.Fatal("FromMatrix aliases the input matrix")
	}
}
