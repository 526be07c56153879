package spawn

import (
	"time"

	"github.com/siegeline/siege/internal/core/ecs"
	"github.com/siegeline/siege/internal/core/event"
	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
	"go.uber.org/zap"
)

// PathProvider exposes one waypoint sequence per lane. It may be queried
// again whenever the cached paths become invalid.
type PathProvider interface {
	Paths() [][]data.Waypoint
}

// CompletionListener receives one call per lane per round once the lane has
// spawned its quota and every actor is gone.
type CompletionListener interface {
	LaneCompleted(lane, round int)
}

// KillSink is told about every actor killed by the defence.
type KillSink interface {
	OnActorKilled()
}

// Config is the scheduler's static configuration.
type Config struct {
	SpawnInterval  time.Duration
	OnePerInterval bool // one actor per lane per interval instead of a burst
	Continuous     bool // round-robin across lanes outside discrete rounds
	Base           BaseStats
}

// Deps are the collaborators a scheduler is built from.
type Deps struct {
	Paths    PathProvider
	World    *ecs.World
	Alloc    Allocator
	Selector *Selector
	Catalog  *data.EnemyTable
	Bus      *event.Bus
	Kills    KillSink
	Log      *zap.Logger
}

// Scheduler owns the lanes built from a path provider and drives their
// spawn timers. All methods run on the game loop goroutine.
type Scheduler struct {
	cfg      Config
	paths    PathProvider
	world    *ecs.World
	alloc    Allocator
	selector *Selector
	catalog  *data.EnemyTable
	bus      *event.Bus
	kills    KillSink
	listener CompletionListener
	log      *zap.Logger

	lanes    []*Lane
	cursor   int
	timer    time.Duration
	disabled bool
}

func NewScheduler(cfg Config, deps Deps) *Scheduler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.World == nil {
		deps.World = ecs.NewWorld()
	}
	return &Scheduler{
		cfg:      cfg,
		paths:    deps.Paths,
		world:    deps.World,
		alloc:    deps.Alloc,
		selector: deps.Selector,
		catalog:  deps.Catalog,
		bus:      deps.Bus,
		kills:    deps.Kills,
		log:      deps.Log,
	}
}

// SetCompletionListener installs the round director.
func (s *Scheduler) SetCompletionListener(l CompletionListener) {
	s.listener = l
}

// World returns the lease world whose destroy queue the cleanup system flushes.
func (s *Scheduler) World() *ecs.World { return s.world }

// Lanes returns every lane, enabled or not, in path order.
func (s *Scheduler) Lanes() []*Lane { return s.lanes }

// Refresh re-queries the path provider. Lane i always follows path i:
// existing lanes are reset in place with their new path, extra paths append
// new lanes, and a lane whose path is empty or gone is disabled with a
// warning. Returns the number of enabled lanes.
func (s *Scheduler) Refresh() int {
	var paths [][]data.Waypoint
	if s.paths != nil {
		paths = s.paths.Paths()
	}
	for i, p := range paths {
		if len(p) == 0 {
			s.log.Warn("lane path missing, lane disabled", zap.Int("path", i))
		}
	}

	for i, lane := range s.lanes {
		var p []data.Waypoint
		if i < len(paths) {
			p = paths[i]
		}
		lane.reset(p)
	}
	for i := len(s.lanes); i < len(paths); i++ {
		lane := newLane(i, paths[i], s)
		s.world.Registry().Register(lane)
		s.lanes = append(s.lanes, lane)
	}
	s.cursor = 0
	n := len(s.enabledLanes())
	if n == 0 {
		s.log.Warn("no lane paths available")
	}
	return n
}

// ActiveLanes returns the enabled lanes, querying the path provider once if
// none are cached. A disabled scheduler has no active lanes.
func (s *Scheduler) ActiveLanes() []*Lane {
	if s.disabled {
		return nil
	}
	out := s.enabledLanes()
	if len(out) == 0 {
		s.Refresh()
		out = s.enabledLanes()
	}
	return out
}

func (s *Scheduler) enabledLanes() []*Lane {
	out := make([]*Lane, 0, len(s.lanes))
	for _, l := range s.lanes {
		if l.enabled {
			out = append(out, l)
		}
	}
	return out
}

// Disable stops all further production. Live actors still report deaths
// so their handles are returned.
func (s *Scheduler) Disable() {
	s.disabled = true
}

// Disabled reports whether production has been stopped.
func (s *Scheduler) Disabled() bool { return s.disabled }

// Tick advances every lane, or the round-robin timer in continuous mode.
func (s *Scheduler) Tick(dt time.Duration) {
	if s.disabled {
		return
	}
	if s.cfg.Continuous {
		s.tickContinuous(dt)
		return
	}
	for _, l := range s.lanes {
		l.Tick(dt)
	}
}

// tickContinuous spawns one unscaled actor per interval, cycling a cursor
// across the enabled lanes.
func (s *Scheduler) tickContinuous(dt time.Duration) {
	s.timer += dt
	if s.timer < s.cfg.SpawnInterval {
		return
	}
	s.timer = 0
	lanes := s.ActiveLanes()
	if len(lanes) == 0 {
		return
	}
	if s.cursor >= len(lanes) || s.cursor < 0 {
		s.cursor = 0
	}
	lanes[s.cursor].spawnOne(difficulty.Unscaled())
	s.cursor = (s.cursor + 1) % len(lanes)
}

// Alive returns the number of live actors across all lanes.
func (s *Scheduler) Alive() int {
	n := 0
	for _, l := range s.lanes {
		n += l.alive
	}
	return n
}
