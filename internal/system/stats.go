package system

import (
	"time"

	"github.com/siegeline/siege/internal/core/event"
	coresys "github.com/siegeline/siege/internal/core/system"
	"go.uber.org/zap"
)

// RunStats is the running tally shown in the end-of-run report.
type RunStats struct {
	Rounds    int // rounds completed
	Spawned   int
	Killed    int
	Escaped   int
	Money     int
	PeakMoney int
	LastRound int
	GameOver  bool
}

// StatsSystem listens to engine notifications, logs them and keeps the
// run tally. It does no work per tick. Phase 3 (PostUpdate).
type StatsSystem struct {
	bus   *event.Bus
	log   *zap.Logger
	subs  []*event.Subscription
	stats RunStats
}

func NewStatsSystem(bus *event.Bus, startingMoney int, log *zap.Logger) *StatsSystem {
	return &StatsSystem{
		bus:   bus,
		log:   log,
		stats: RunStats{Money: startingMoney, PeakMoney: startingMoney},
	}
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StatsSystem) Init() error {
	s.subs = append(s.subs,
		event.Subscribe(s.bus, func(e event.MoneyChanged) {
			s.stats.Money = e.Money
			s.stats.PeakMoney = max(s.stats.PeakMoney, e.Money)
		}),
		event.Subscribe(s.bus, func(e event.RoundChanged) {
			s.stats.LastRound = e.Round
			s.log.Debug("round changed", zap.Int("round", e.Round), zap.Bool("in_progress", e.InProgress))
		}),
		event.Subscribe(s.bus, func(e event.ActorSpawned) {
			s.stats.Spawned++
		}),
		event.Subscribe(s.bus, func(e event.ActorDied) {
			if e.Escaped {
				s.stats.Escaped++
			} else {
				s.stats.Killed++
			}
		}),
		event.Subscribe(s.bus, func(e event.RoundCompleted) {
			s.stats.Rounds++
		}),
		event.Subscribe(s.bus, func(e event.GameOver) {
			s.stats.GameOver = true
			s.stats.LastRound = e.Round
			s.stats.Money = e.Money
		}),
	)
	return nil
}

func (s *StatsSystem) Update(_ time.Duration) {}

func (s *StatsSystem) Shutdown() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}

// Stats returns a copy of the current tally.
func (s *StatsSystem) Stats() RunStats { return s.stats }
