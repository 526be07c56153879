// Package economy holds the money ledger consulted by purchase flows and
// credited by kills. Accessed only from the game loop goroutine.
package economy

import (
	"github.com/siegeline/siege/internal/core/event"
	"go.uber.org/zap"
)

// Ledger tracks the player's money. Money never goes negative.
type Ledger struct {
	money  int
	reward int
	closed bool
	bus    *event.Bus
	log    *zap.Logger
}

// NewLedger creates a ledger holding startingMoney that pays reward per kill.
func NewLedger(startingMoney, reward int, bus *event.Bus, log *zap.Logger) *Ledger {
	if startingMoney < 0 {
		startingMoney = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{money: startingMoney, reward: reward, bus: bus, log: log}
}

// Money returns the current balance.
func (l *Ledger) Money() int { return l.money }

// Reward returns the money granted per kill.
func (l *Ledger) Reward() int { return l.reward }

// CanAfford reports whether amount could be spent now. Non-positive
// amounts are always affordable.
func (l *Ledger) CanAfford(amount int) bool {
	if amount <= 0 {
		return true
	}
	return l.money >= amount
}

// TrySpend deducts amount only if the balance covers it. Non-positive
// amounts succeed without touching the balance.
func (l *Ledger) TrySpend(amount int) bool {
	if amount <= 0 {
		return true
	}
	if l.money < amount {
		return false
	}
	l.money -= amount
	l.changed()
	return true
}

// TryPurchase is the purchase entry point used by shops and the UI.
func (l *Ledger) TryPurchase(cost int) bool {
	ok := l.TrySpend(cost)
	if !ok {
		l.log.Debug("purchase refused", zap.Int("cost", cost), zap.Int("money", l.money))
	}
	return ok
}

// AddMoney credits a positive amount.
func (l *Ledger) AddMoney(amount int) {
	if amount <= 0 {
		return
	}
	l.money += amount
	l.changed()
}

// OnActorKilled pays the kill reward. Ignored once the game is over.
func (l *Ledger) OnActorKilled() {
	if l.closed {
		return
	}
	l.AddMoney(l.reward)
}

// Close stops kill rewards; called on game over.
func (l *Ledger) Close() { l.closed = true }

// Closed reports whether the ledger stopped paying rewards.
func (l *Ledger) Closed() bool { return l.closed }

func (l *Ledger) changed() {
	if l.bus != nil {
		event.Emit(l.bus, event.MoneyChanged{Money: l.money})
	}
}
