package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1, 30, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}

	c := DeterministicNoise(43, 1.0, 64)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestDrift(t *testing.T) {
	d := Drift(5, 0.05, 30, 3000)
	RequireFinite(t, d)
	if d[0] != 0 {
		t.Fatalf("d[0] = %v, want 0", d[0])
	}
	want := 5 * math.Sin(0.05*2999/30)
	if math.Abs(d[2999]-want) > 1e-12 {
		t.Fatalf("d[2999] = %v, want %v", d[2999], want)
	}
}

func TestSimulateCalcium(t *testing.T) {
	cfg := Calcium{Length: 3000, FrameRate: 30, SpikeRate: 0.5, Decay: 0.95, Baseline: 2, Noise: 0.3, Seed: 1}
	y, c, s := SimulateCalcium(cfg)

	if len(y) != 3000 || len(c) != 3000 || len(s) != 3000 {
		t.Fatalf("lengths = %d, %d, %d", len(y), len(c), len(s))
	}

	spikes := 0
	for i := range s {
		if s[i] != 0 && s[i] != 1 {
			t.Fatalf("s[%d] = %v, want binary", i, s[i])
		}
		if s[i] == 1 {
			spikes++
		}
		prev := 0.0
		if i > 0 {
			prev = c[i-1]
		}
		if math.Abs(c[i]-(0.95*prev+s[i])) > 1e-12 {
			t.Fatalf("c[%d] breaks AR(1) recursion", i)
		}
	}

	// Expect about 50 spikes at 0.5 Hz over 100 s.
	if spikes < 25 || spikes > 80 {
		t.Fatalf("spike count = %d", spikes)
	}

	y2, _, _ := SimulateCalcium(cfg)
	RequireSliceNearlyEqual(t, y, y2, 0)
}

func TestDC(t *testing.T) {
	d := DC(0.5, 4)
	for i, v := range d {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}
