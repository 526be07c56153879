package world

import (
	"github.com/siegeline/siege/internal/data"
	"go.uber.org/zap"
)

// TowerConfig holds the tower's static stats.
type TowerConfig struct {
	MaxHealth      float64
	AttackInterval float64 // seconds between shots
	DamagePerShot  float64
	Range          float64 // <= 0 reaches every lane
	Position       data.Waypoint
}

// Tower is the defended structure. It shoots the actor closest to the end
// of its path and reports its own destruction exactly once.
type Tower struct {
	cfg         TowerConfig
	health      float64
	cooldown    float64
	destroyed   bool
	shots       int
	onDestroyed func()
	log         *zap.Logger
}

func NewTower(cfg TowerConfig, log *zap.Logger) *Tower {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = 1
	}
	return &Tower{cfg: cfg, health: cfg.MaxHealth, log: log}
}

// OnDestroyed installs the game-over trigger.
func (t *Tower) OnDestroyed(fn func()) { t.onDestroyed = fn }

func (t *Tower) Health() float64    { return t.health }
func (t *Tower) MaxHealth() float64 { return t.cfg.MaxHealth }
func (t *Tower) Destroyed() bool    { return t.destroyed }
func (t *Tower) Shots() int         { return t.shots }

// ScaleDamage multiplies the damage per shot; non-positive factors are ignored.
func (t *Tower) ScaleDamage(factor float64) {
	if factor > 0 {
		t.cfg.DamagePerShot *= factor
	}
}

func (t *Tower) DamagePerShot() float64 { return t.cfg.DamagePerShot }

// TakeDamage lowers health; the destroyed callback fires when it reaches 0.
func (t *Tower) TakeDamage(amount float64) {
	if t.destroyed || amount <= 0 {
		return
	}
	t.health -= amount
	if t.health > 0 {
		return
	}
	t.health = 0
	t.destroyed = true
	t.log.Info("tower destroyed")
	if t.onDestroyed != nil {
		t.onDestroyed()
	}
}

// Update runs the attack cooldown and fires at most one shot.
func (t *Tower) Update(dt float64, actors []*Actor) {
	if t.destroyed {
		return
	}
	t.cooldown -= dt
	target := t.target(actors)
	if target == nil || t.cooldown > 0 {
		return
	}
	t.shots++
	target.TakeDamage(t.cfg.DamagePerShot)
	t.cooldown = t.cfg.AttackInterval
}

func (t *Tower) target(actors []*Actor) *Actor {
	var best *Actor
	for _, a := range actors {
		if !a.active {
			continue
		}
		if t.cfg.Range > 0 && distance(t.cfg.Position, a.pos) > t.cfg.Range {
			continue
		}
		if best == nil || a.Remaining() < best.Remaining() {
			best = a
		}
	}
	return best
}
