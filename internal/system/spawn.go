package system

import (
	"time"

	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/spawn"
)

// SpawnSystem advances the lane spawn timers. Phase 2 (Spawn).
type SpawnSystem struct {
	sched *spawn.Scheduler
}

func NewSpawnSystem(sched *spawn.Scheduler) *SpawnSystem {
	return &SpawnSystem{sched: sched}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *SpawnSystem) Update(dt time.Duration) {
	s.sched.Tick(dt)
}
