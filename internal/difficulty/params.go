package difficulty

import "math"

// Tuning holds the per-round growth rates and caps for a game.
type Tuning struct {
	BaseEnemies                int
	EnemiesIncrement           int
	HealthPerRound             float64
	MaxHealthBonus             float64
	SpeedPerRound              float64
	MaxSpeedBonus              float64
	DamagePerRound             float64
	MaxDamageBonus             float64
	SpawnIntervalReduction     float64
	MinSpawnIntervalMultiplier float64
	ExtraSpawnsPerRound        float64
	MaxExtraSpawns             float64
}

// DefaultTuning returns the stock growth rates.
func DefaultTuning() Tuning {
	return Tuning{
		BaseEnemies:                3,
		EnemiesIncrement:           2,
		HealthPerRound:             0.15,
		MaxHealthBonus:             2.0,
		SpeedPerRound:              0.05,
		MaxSpeedBonus:              0.6,
		DamagePerRound:             0.1,
		MaxDamageBonus:             1.5,
		SpawnIntervalReduction:     0.03,
		MinSpawnIntervalMultiplier: 0.35,
		ExtraSpawnsPerRound:        0.05,
		MaxExtraSpawns:             2,
	}
}

// RoundParameters is computed once when a round starts and never mutated.
type RoundParameters struct {
	Round                   int // 1-based round number shown to players
	RoundIndex              int // 0-based index fed into the curves
	TotalEnemies            int
	HealthMultiplier        float64
	SpeedMultiplier         float64
	DamageMultiplier        float64
	SpawnIntervalMultiplier float64
	SpawnsPerTick           int
}

// Compute derives the parameters of round (1-based) from t.
func Compute(round int, t Tuning) RoundParameters {
	idx := round - 1
	if idx < 0 {
		idx = 0
	}
	total := t.BaseEnemies + max(0, idx*t.EnemiesIncrement)
	p := RoundParameters{
		Round:                   round,
		RoundIndex:              idx,
		TotalEnemies:            total,
		HealthMultiplier:        Multiplier(idx, t.HealthPerRound, t.MaxHealthBonus),
		SpeedMultiplier:         Multiplier(idx, t.SpeedPerRound, t.MaxSpeedBonus),
		DamageMultiplier:        Multiplier(idx, t.DamagePerRound, t.MaxDamageBonus),
		SpawnIntervalMultiplier: FactorDown(idx, t.SpawnIntervalReduction, t.MinSpawnIntervalMultiplier),
		SpawnsPerTick:           1 + int(math.Floor(Bonus(idx, t.ExtraSpawnsPerRound, t.MaxExtraSpawns))),
	}
	return p.Normalize()
}

// Unscaled is the neutral parameter set used outside discrete rounds.
func Unscaled() RoundParameters {
	return RoundParameters{
		HealthMultiplier:        1,
		SpeedMultiplier:         1,
		DamageMultiplier:        1,
		SpawnIntervalMultiplier: 1,
		SpawnsPerTick:           1,
	}
}

// Normalize forces every field into its valid range. Values that arrive from
// scripts pass through here before they reach the lanes.
func (p RoundParameters) Normalize() RoundParameters {
	if p.RoundIndex < 0 {
		p.RoundIndex = 0
	}
	if p.TotalEnemies < 0 {
		p.TotalEnemies = 0
	}
	p.HealthMultiplier = positiveOr1(p.HealthMultiplier)
	p.SpeedMultiplier = positiveOr1(p.SpeedMultiplier)
	p.DamageMultiplier = positiveOr1(p.DamageMultiplier)
	if p.SpawnIntervalMultiplier <= 0 || math.IsNaN(p.SpawnIntervalMultiplier) {
		p.SpawnIntervalMultiplier = 1
	}
	if p.SpawnIntervalMultiplier > 1 {
		p.SpawnIntervalMultiplier = 1
	}
	if p.SpawnsPerTick < 1 {
		p.SpawnsPerTick = 1
	}
	return p
}

func positiveOr1(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}
