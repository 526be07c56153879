package spawn

import (
	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
)

// BaseStats are the unscaled enemy numbers configured per spawner.
type BaseStats struct {
	Speed                  float64
	MaxHealth              float64
	DamageToTower          float64
	DefenderAttackRange    float64
	DefenderAttackInterval float64
	DamageToDefender       float64
}

// ActorConfig is the effective configuration handed to Actor.Initialize.
type ActorConfig struct {
	TypeID                int
	Round                 int
	Lane                  int
	Speed                 float64
	MaxHealth             float64
	TowerDamage           float64
	DefenderDamage        float64
	AttackRange           float64
	AttackInterval        float64
	AttackPriority        data.AttackPriority
	DamageTakenMultiplier float64
	Enrage                data.EnrageParams
}

// Effective combines base stats, round scaling and the type's own
// multipliers. def may be nil for the untyped enemy.
func Effective(base BaseStats, p difficulty.RoundParameters, def *data.EnemyType) ActorConfig {
	cfg := ActorConfig{
		TypeID:                data.UntypedID,
		Round:                 p.Round,
		Speed:                 base.Speed * p.SpeedMultiplier,
		MaxHealth:             base.MaxHealth * p.HealthMultiplier,
		TowerDamage:           base.DamageToTower * p.DamageMultiplier,
		DefenderDamage:        base.DamageToDefender * p.DamageMultiplier,
		AttackRange:           base.DefenderAttackRange,
		AttackInterval:        base.DefenderAttackInterval,
		AttackPriority:        data.TowerFirst,
		DamageTakenMultiplier: 1,
		Enrage:                data.EnrageParams{IntervalMultiplier: 1},
	}
	if def == nil {
		return cfg
	}
	cfg.TypeID = def.TypeID
	cfg.Speed *= def.SpeedMultiplier
	cfg.MaxHealth *= def.HealthMultiplier
	cfg.TowerDamage *= def.TowerDamageMultiplier
	cfg.DefenderDamage *= def.DefenderDamageMultiplier
	if def.OverrideAttackRange && def.AttackRange > 0 {
		cfg.AttackRange = def.AttackRange
	}
	if def.OverrideAttackInterval && def.AttackInterval > 0 {
		cfg.AttackInterval = def.AttackInterval
	}
	cfg.AttackPriority = def.AttackPriority
	cfg.DamageTakenMultiplier = def.DamageTakenMultiplier
	cfg.Enrage = def.Enrage
	return cfg
}
