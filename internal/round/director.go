// Package round drives the round state machine: it computes each round's
// parameters, splits them across lanes, waits for every lane to drain and
// schedules the next round.
package round

import (
	"time"

	"github.com/siegeline/siege/internal/core/event"
	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/difficulty"
	"github.com/siegeline/siege/internal/spawn"
	"go.uber.org/zap"
)

// State is the director's position in the round state machine.
type State int

const (
	Idle State = iota
	Prep
	Active
	GameOver
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Prep:
		return "prep"
	case Active:
		return "active"
	case GameOver:
		return "game_over"
	}
	return "unknown"
}

// LaneSource supplies the lanes taking part in each round. Refresh
// re-reads the paths so lanes added or removed since the last round are
// picked up.
type LaneSource interface {
	Refresh() int
	ActiveLanes() []*spawn.Lane
	Disable()
}

// Adjuster may rewrite computed round parameters (scripted rounds).
type Adjuster interface {
	AdjustRound(p difficulty.RoundParameters) difficulty.RoundParameters
}

// Economy is the part of the ledger the director drives.
type Economy interface {
	Money() int
	TryPurchase(cost int) bool
	OnActorKilled()
	Close()
}

// Config holds the director's static settings.
type Config struct {
	StartingRound int
	StartDelay    time.Duration
	Tuning        difficulty.Tuning
}

// Director owns the round state machine. It is created by the composition
// root and ticked by the round system; all calls happen on the game loop.
type Director struct {
	cfg      Config
	lanes    LaneSource
	economy  Economy
	adjuster Adjuster
	bus      *event.Bus
	log      *zap.Logger

	state     State
	round     int
	params    difficulty.RoundParameters
	laneCount int
	active    []*spawn.Lane
	completed map[int]struct{}
	pending   *coresys.Deferred
}

// NewDirector builds an idle director. adjuster and bus may be nil.
func NewDirector(cfg Config, lanes LaneSource, economy Economy, adjuster Adjuster, bus *event.Bus, log *zap.Logger) *Director {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Director{
		cfg:       cfg,
		lanes:     lanes,
		economy:   economy,
		adjuster:  adjuster,
		bus:       bus,
		log:       log,
		completed: make(map[int]struct{}, 4),
	}
	d.round = d.initialRound()
	return d
}

func (d *Director) initialRound() int {
	return max(0, d.cfg.StartingRound-1)
}

func (d *Director) State() State                       { return d.state }
func (d *Director) CurrentRound() int                  { return d.round }
func (d *Director) StartingRound() int                 { return d.cfg.StartingRound }
func (d *Director) RoundInProgress() bool              { return d.state == Active }
func (d *Director) HasStarted() bool                   { return d.state != Idle }
func (d *Director) IsGameOver() bool                   { return d.state == GameOver }
func (d *Director) Params() difficulty.RoundParameters { return d.params }

// Money returns the ledger balance, or 0 without an economy.
func (d *Director) Money() int {
	if d.economy == nil {
		return 0
	}
	return d.economy.Money()
}

// TryPurchase spends cost if the balance covers it.
func (d *Director) TryPurchase(cost int) bool {
	if d.economy == nil {
		return cost <= 0
	}
	return d.economy.TryPurchase(cost)
}

// OnActorKilled credits the kill reward.
func (d *Director) OnActorKilled() {
	if d.economy != nil {
		d.economy.OnActorKilled()
	}
}

// NextRoundPending reports whether a round start is scheduled.
func (d *Director) NextRoundPending() bool { return d.pending.Pending() }

// BeginGame moves Idle to Prep and starts the first round straight away.
// Repeated calls and calls after game over do nothing.
func (d *Director) BeginGame() {
	if d.state != Idle {
		return
	}
	d.state = Prep
	d.round = d.initialRound()
	emit(d, event.GameStarted{StartingRound: d.cfg.StartingRound})
	d.log.Info("game started", zap.Int("starting_round", d.cfg.StartingRound))
	d.BeginNextRound()
}

// BeginNextRound starts the next round if the game is in Prep and at least
// one lane is available; otherwise it does nothing.
func (d *Director) BeginNextRound() {
	if d.state != Prep {
		return
	}
	d.lanes.Refresh()
	lanes := d.lanes.ActiveLanes()
	if len(lanes) == 0 {
		d.log.Warn("round not started, no active lanes", zap.Int("round", d.round+1))
		return
	}
	d.pending.Cancel()
	d.pending = nil

	d.round = max(1, d.round+1)
	p := difficulty.Compute(d.round, d.cfg.Tuning)
	if d.adjuster != nil {
		p = d.adjuster.AdjustRound(p)
		p.Round = d.round
		p.RoundIndex = max(0, d.round-1)
		p = p.Normalize()
	}
	d.params = p
	d.state = Active
	d.active = lanes
	d.laneCount = len(lanes)
	clear(d.completed)

	emit(d, event.RoundChanged{Round: d.round, InProgress: true})
	emit(d, event.RoundStarted{
		Round:         d.round,
		TotalEnemies:  p.TotalEnemies,
		HealthMult:    p.HealthMultiplier,
		SpeedMult:     p.SpeedMultiplier,
		DamageMult:    p.DamageMultiplier,
		IntervalMult:  p.SpawnIntervalMultiplier,
		SpawnsPerTick: p.SpawnsPerTick,
		LaneCount:     d.laneCount,
	})
	d.log.Info("round started",
		zap.Int("round", d.round),
		zap.Int("enemies", p.TotalEnemies),
		zap.Int("lanes", d.laneCount),
		zap.Float64("health_mult", p.HealthMultiplier),
		zap.Float64("speed_mult", p.SpeedMultiplier),
		zap.Float64("damage_mult", p.DamageMultiplier),
		zap.Float64("interval_mult", p.SpawnIntervalMultiplier),
		zap.Int("spawns_per_tick", p.SpawnsPerTick))

	quotas := SplitQuota(p.TotalEnemies, len(lanes))
	for i, lane := range lanes {
		lane.StartRound(p, quotas[i])
	}
}

// LaneCompleted records one lane's completion. When every lane of the
// running round has reported, the round ends and the next start is
// scheduled after the configured delay. Duplicates, stale rounds and
// reports outside Active are ignored.
func (d *Director) LaneCompleted(lane, round int) {
	if d.state != Active || round != d.round {
		return
	}
	d.completed[lane] = struct{}{}
	if len(d.completed) < d.laneCount {
		return
	}

	d.state = Prep
	spawned, killed, escaped := 0, 0, 0
	for _, l := range d.active {
		spawned += l.Spawned()
		killed += l.Killed()
		escaped += l.Escaped()
	}
	emit(d, event.RoundChanged{Round: d.round, InProgress: false})
	emit(d, event.RoundCompleted{Round: d.round, Spawned: spawned, Killed: killed, Escaped: escaped})
	d.log.Info("round complete",
		zap.Int("round", d.round), zap.Int("killed", killed), zap.Int("escaped", escaped))

	if d.pending.Pending() {
		return
	}
	d.pending = coresys.After(d.cfg.StartDelay, d.BeginNextRound)
}

// Tick advances the deferred round start.
func (d *Director) Tick(dt time.Duration) {
	if d.pending.Advance(dt) {
		d.pending = nil
	}
}

// GameOver ends the game from any state. The pending round start is
// cancelled and lanes stop producing. Repeated calls do nothing.
func (d *Director) GameOver() {
	if d.state == GameOver {
		return
	}
	d.state = GameOver
	d.pending.Cancel()
	d.pending = nil
	d.lanes.Disable()
	money := 0
	if d.economy != nil {
		d.economy.Close()
		money = d.economy.Money()
	}
	emit(d, event.RoundChanged{Round: d.round, InProgress: false})
	emit(d, event.GameOver{Round: d.round, Money: money})
	d.log.Info("game over", zap.Int("round", d.round), zap.Int("money", money))
}

func emit[T any](d *Director, ev T) {
	if d.bus != nil {
		event.Emit(d.bus, ev)
	}
}
