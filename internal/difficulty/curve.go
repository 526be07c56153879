// Package difficulty maps a 0-based round index to soft-capped scaling
// factors. Every function here is pure.
package difficulty

import "math"

const (
	minFactorFloor = 0.05
	// keeps k finite when a cap is configured absurdly small
	minCap = 0.0001
)

// Bonus returns the additive per-round bonus for roundIndex.
//
// With maxBonus <= 0 growth is linear and uncapped. Otherwise the result
// follows maxBonus*(1-exp(-k*roundIndex)) with k = perRound/maxBonus: the
// initial slope matches perRound and the curve approaches maxBonus without
// ever reaching it.
func Bonus(roundIndex int, perRound, maxBonus float64) float64 {
	if roundIndex <= 0 || perRound <= 0 {
		return 0
	}
	if maxBonus <= 0 {
		return float64(roundIndex) * perRound
	}
	return softCap(float64(roundIndex), perRound, maxBonus)
}

// FactorDown returns a multiplicative factor in [minFactor, 1] that shrinks
// with roundIndex. minFactor is clamped to [0.05, 1].
func FactorDown(roundIndex int, perRoundReduction, minFactor float64) float64 {
	minFactor = clamp(minFactor, minFactorFloor, 1)
	if roundIndex <= 0 || perRoundReduction <= 0 {
		return 1
	}
	maxReduction := 1 - minFactor
	if maxReduction <= 0 {
		return 1
	}
	reduction := softCap(float64(roundIndex), perRoundReduction, maxReduction)
	return clamp(1-reduction, minFactor, 1)
}

// Multiplier is 1 + Bonus, the form consumed by stat scaling.
func Multiplier(roundIndex int, perRound, maxBonus float64) float64 {
	return 1 + Bonus(roundIndex, perRound, maxBonus)
}

func softCap(x, rate, ceiling float64) float64 {
	k := rate / math.Max(minCap, ceiling)
	v := ceiling * -math.Expm1(-k*x)
	// float64 rounding can land exactly on the ceiling for huge inputs
	if v >= ceiling {
		v = math.Nextafter(ceiling, 0)
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
