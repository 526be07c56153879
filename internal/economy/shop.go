package economy

import (
	"github.com/siegeline/siege/internal/data"
	"go.uber.org/zap"
)

// Defender is a purchased defender and the upgrades applied to it.
type Defender struct {
	Def              *data.DefenderDef
	Level            int // number of upgrade steps bought
	HealthMultiplier float64
	DamageMultiplier float64
}

// NextUpgrade returns the next purchasable step, or nil at max level.
func (d *Defender) NextUpgrade() *data.UpgradeStep {
	if d.Level >= len(d.Def.Upgrades) {
		return nil
	}
	return &d.Def.Upgrades[d.Level]
}

// Shop sells defenders and their upgrades through a ledger.
type Shop struct {
	ledger *Ledger
	table  *data.DefenderTable
	log    *zap.Logger
}

func NewShop(ledger *Ledger, table *data.DefenderTable, log *zap.Logger) *Shop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shop{ledger: ledger, table: table, log: log}
}

// Buy purchases the named defender. Unknown names and insufficient funds
// return false without spending.
func (s *Shop) Buy(name string) (*Defender, bool) {
	def := s.table.Get(name)
	if def == nil {
		s.log.Warn("unknown defender", zap.String("name", name))
		return nil, false
	}
	if !s.ledger.TryPurchase(def.Cost) {
		return nil, false
	}
	return &Defender{Def: def, HealthMultiplier: 1, DamageMultiplier: 1}, true
}

// Upgrade buys the next upgrade step of d.
func (s *Shop) Upgrade(d *Defender) bool {
	step := d.NextUpgrade()
	if step == nil {
		return false
	}
	if !s.ledger.TryPurchase(step.Cost) {
		return false
	}
	d.Level++
	d.HealthMultiplier *= step.HealthMultiplier
	d.DamageMultiplier *= step.DamageMultiplier
	s.log.Info("defender upgraded",
		zap.String("defender", d.Def.Name), zap.String("step", step.Label), zap.Int("level", d.Level))
	return true
}
