package difficulty

import (
	"math"
	"testing"
)

func TestBonusWorkedExample(t *testing.T) {
	got := Multiplier(4, 0.15, 2.0)
	if math.Abs(got-1.518) > 0.001 {
		t.Fatalf("Multiplier(4, .15, 2) = %.4f, want ≈1.518", got)
	}
}

func TestBonusEdges(t *testing.T) {
	tests := []struct {
		name     string
		round    int
		perRound float64
		max      float64
		want     float64
	}{
		{"round zero", 0, 0.15, 2, 0},
		{"negative round", -3, 0.15, 2, 0},
		{"zero rate", 5, 0, 2, 0},
		{"negative rate", 5, -1, 2, 0},
		{"uncapped linear", 4, 0.25, 0, 1.0},
		{"negative cap is linear", 3, 0.5, -1, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bonus(tt.round, tt.perRound, tt.max); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Bonus(%d, %v, %v) = %v, want %v", tt.round, tt.perRound, tt.max, got, tt.want)
			}
		})
	}
}

func TestBonusMonotonicAndBelowCap(t *testing.T) {
	caps := []float64{0.6, 1.5, 2.0}
	for _, max := range caps {
		prev := 0.0
		for r := 0; r <= 5000; r++ {
			b := Bonus(r, 0.15, max)
			if b < prev {
				t.Fatalf("cap %v: bonus decreased at round %d (%v < %v)", max, r, b, prev)
			}
			if b >= max {
				t.Fatalf("cap %v: bonus reached cap at round %d", max, r)
			}
			prev = b
		}
	}
	if b := Bonus(math.MaxInt32, 0.15, 2); b >= 2 {
		t.Fatalf("huge round index reached cap: %v", b)
	}
}

func TestBonusInitialSlopeTracksLinearRate(t *testing.T) {
	b := Bonus(1, 0.05, 0.6)
	if math.Abs(b-0.05) > 0.005 {
		t.Fatalf("first round bonus %v should be close to the linear rate", b)
	}
}

func TestFactorDownBounds(t *testing.T) {
	tests := []struct {
		perRound  float64
		minFactor float64
		wantMin   float64
	}{
		{0.03, 0.35, 0.35},
		{0.5, 0.0, 0.05}, // floor clamps to 0.05
		{0.2, 2.0, 1.0},  // ceiling clamps to 1
	}
	for _, tt := range tests {
		prev := 1.0
		for r := 0; r <= 2000; r++ {
			f := FactorDown(r, tt.perRound, tt.minFactor)
			if f < tt.wantMin || f > 1 {
				t.Fatalf("FactorDown(%d, %v, %v) = %v outside [%v, 1]", r, tt.perRound, tt.minFactor, f, tt.wantMin)
			}
			if f > prev {
				t.Fatalf("FactorDown increased at round %d", r)
			}
			prev = f
		}
	}
}

func TestFactorDownIdentity(t *testing.T) {
	if f := FactorDown(0, 0.03, 0.35); f != 1 {
		t.Errorf("round 0 factor = %v, want 1", f)
	}
	if f := FactorDown(10, 0, 0.35); f != 1 {
		t.Errorf("zero reduction factor = %v, want 1", f)
	}
	if f := FactorDown(10, 0.03, 1); f != 1 {
		t.Errorf("min factor 1 should disable reduction, got %v", f)
	}
}
