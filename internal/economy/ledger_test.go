package economy

import (
	"math"
	"testing"

	"github.com/siegeline/siege/internal/core/event"
	"github.com/siegeline/siege/internal/data"
	"go.uber.org/zap"
)

func TestTryPurchase(t *testing.T) {
	l := NewLedger(100, 50, nil, zap.NewNop())
	if l.TryPurchase(150) {
		t.Fatal("purchase of 150 with 100 succeeded")
	}
	if l.Money() != 100 {
		t.Fatalf("failed purchase mutated money: %d", l.Money())
	}
	if !l.TryPurchase(40) {
		t.Fatal("purchase of 40 with 100 failed")
	}
	if l.Money() != 60 {
		t.Fatalf("money = %d, want 60", l.Money())
	}
}

func TestNonPositiveAmounts(t *testing.T) {
	l := NewLedger(10, 50, nil, nil)
	if !l.TrySpend(0) || !l.TrySpend(-5) || !l.CanAfford(-1) {
		t.Fatal("non-positive spend should succeed")
	}
	l.AddMoney(-20)
	if l.Money() != 10 {
		t.Fatalf("money = %d, want unchanged 10", l.Money())
	}
	if l.CanAfford(11) {
		t.Fatal("CanAfford(11) with 10")
	}
}

func TestKillRewardStopsAfterClose(t *testing.T) {
	l := NewLedger(0, 50, nil, nil)
	l.OnActorKilled()
	l.OnActorKilled()
	if l.Money() != 100 {
		t.Fatalf("money = %d, want 100", l.Money())
	}
	l.Close()
	l.OnActorKilled()
	if l.Money() != 100 {
		t.Fatal("reward paid after close")
	}
}

func TestMoneyChangedNotifications(t *testing.T) {
	bus := event.NewBus()
	var seen []int
	sub := event.Subscribe(bus, func(e event.MoneyChanged) { seen = append(seen, e.Money) })
	defer sub.Cancel()

	l := NewLedger(100, 50, bus, nil)
	l.TryPurchase(500) // refused, no notification
	l.TryPurchase(30)
	l.OnActorKilled()

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(seen) != 2 || seen[0] != 70 || seen[1] != 120 {
		t.Fatalf("notifications = %v, want [70 120]", seen)
	}
}

func TestShopBuyAndUpgrade(t *testing.T) {
	table := data.NewDefenderTable([]data.DefenderDef{{
		Name: "archer",
		Cost: 100,
		Upgrades: []data.UpgradeStep{
			{Label: "Longbow", Cost: 50, HealthMultiplier: 1.2, DamageMultiplier: 1.5},
			{Cost: 80, HealthMultiplier: 0, DamageMultiplier: 2},
		},
	}})
	l := NewLedger(160, 50, nil, nil)
	shop := NewShop(l, table, nil)

	if _, ok := shop.Buy("knight"); ok {
		t.Fatal("bought an unknown defender")
	}
	d, ok := shop.Buy("archer")
	if !ok || l.Money() != 60 {
		t.Fatalf("buy archer ok=%v money=%d", ok, l.Money())
	}
	if !shop.Upgrade(d) || d.Level != 1 || d.DamageMultiplier != 1.5 {
		t.Fatalf("first upgrade: %+v", d)
	}
	if shop.Upgrade(d) {
		t.Fatal("upgrade succeeded without funds")
	}
	if d.Level != 1 || l.Money() != 10 {
		t.Fatalf("failed upgrade mutated state: level=%d money=%d", d.Level, l.Money())
	}
	l.AddMoney(100)
	if !shop.Upgrade(d) {
		t.Fatal("second upgrade failed")
	}
	if math.Abs(d.HealthMultiplier-0.12) > 1e-9 {
		t.Fatalf("health multiplier = %v, step floor 0.1 not applied", d.HealthMultiplier)
	}
	if d.NextUpgrade() != nil || shop.Upgrade(d) {
		t.Fatal("upgraded past the last step")
	}
	if d.Def.Upgrades[1].Label != "Upgrade" {
		t.Fatal("default label not applied")
	}
}
