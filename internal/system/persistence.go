package system

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/siegeline/siege/internal/core/event"
	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/persist"
	"go.uber.org/zap"
)

// RunStore is the run-history backend. *persist.RunRepo implements it.
type RunStore interface {
	CreateRun(ctx context.Context, run persist.RunRow) (int64, error)
	RecordRound(ctx context.Context, runID int64, row persist.RoundRow) error
	FinishRun(ctx context.Context, runID int64, finalRound, finalMoney int) error
}

// RunInfo describes the run being recorded.
type RunInfo struct {
	Seed          int64
	Mode          string
	StartingMoney int
	LaneCount     func() int
	Money         func() int
}

// PersistenceSystem records run history. Notifications are queued as they
// are delivered and written in the Persist phase; write failures are logged
// and never stop the simulation. Phase 4 (Persist).
type PersistenceSystem struct {
	store   RunStore
	info    RunInfo
	bus     *event.Bus
	log     *zap.Logger
	timeout time.Duration

	subs    []*event.Subscription
	runID   int64
	started map[int]event.RoundStarted
	queue   []pendingWrite
}

// Write stages. A flush runs them in stage order so a run row exists
// before its rounds and its finish are written, whatever order the bus
// delivered the notifications in.
const (
	stageCreate = iota
	stageRound
	stageFinish
)

type pendingWrite struct {
	stage int
	write func(ctx context.Context) error
}

func NewPersistenceSystem(store RunStore, info RunInfo, bus *event.Bus, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		store:   store,
		info:    info,
		bus:     bus,
		log:     log,
		timeout: 5 * time.Second,
		started: make(map[int]event.RoundStarted),
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Init() error {
	s.subs = append(s.subs,
		event.Subscribe(s.bus, s.onGameStarted),
		event.Subscribe(s.bus, s.onRoundStarted),
		event.Subscribe(s.bus, s.onRoundCompleted),
		event.Subscribe(s.bus, s.onGameOver),
	)
	return nil
}

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.flush()
}

// Shutdown writes whatever is still queued and drops the subscriptions.
func (s *PersistenceSystem) Shutdown() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
	s.flush()
}

// RunID returns the id of the recorded run, 0 before it is created.
func (s *PersistenceSystem) RunID() int64 { return s.runID }

func (s *PersistenceSystem) onGameStarted(ev event.GameStarted) {
	row := persist.RunRow{
		Seed:          s.info.Seed,
		Mode:          s.info.Mode,
		StartingRound: ev.StartingRound,
		StartingMoney: s.info.StartingMoney,
	}
	if s.info.LaneCount != nil {
		row.LaneCount = s.info.LaneCount()
	}
	s.enqueue(stageCreate, func(ctx context.Context) error {
		id, err := s.store.CreateRun(ctx, row)
		if err != nil {
			return err
		}
		s.runID = id
		s.log.Info("run recorded", zap.Int64("run_id", id))
		return nil
	})
}

func (s *PersistenceSystem) onRoundStarted(ev event.RoundStarted) {
	s.started[ev.Round] = ev
}

func (s *PersistenceSystem) onRoundCompleted(ev event.RoundCompleted) {
	st := s.started[ev.Round]
	delete(s.started, ev.Round)
	row := persist.RoundRow{
		Round:         ev.Round,
		TotalEnemies:  st.TotalEnemies,
		HealthMult:    st.HealthMult,
		SpeedMult:     st.SpeedMult,
		DamageMult:    st.DamageMult,
		IntervalMult:  st.IntervalMult,
		SpawnsPerTick: st.SpawnsPerTick,
		Spawned:       ev.Spawned,
		Killed:        ev.Killed,
		Escaped:       ev.Escaped,
	}
	if s.info.Money != nil {
		row.Money = s.info.Money()
	}
	s.enqueue(stageRound, func(ctx context.Context) error {
		if s.runID == 0 {
			return nil
		}
		return s.store.RecordRound(ctx, s.runID, row)
	})
}

func (s *PersistenceSystem) onGameOver(ev event.GameOver) {
	s.enqueue(stageFinish, func(ctx context.Context) error {
		if s.runID == 0 {
			return nil
		}
		return s.store.FinishRun(ctx, s.runID, ev.Round, ev.Money)
	})
}

func (s *PersistenceSystem) enqueue(stage int, write func(ctx context.Context) error) {
	s.queue = append(s.queue, pendingWrite{stage: stage, write: write})
}

func (s *PersistenceSystem) flush() {
	if len(s.queue) == 0 {
		return
	}
	queue := s.queue
	s.queue = nil
	slices.SortStableFunc(queue, func(a, b pendingWrite) int { return cmp.Compare(a.stage, b.stage) })
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	for _, w := range queue {
		if err := w.write(ctx); err != nil {
			s.log.Error("run history write failed", zap.Error(err))
		}
	}
}
