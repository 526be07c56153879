package system

import (
	"time"

	"github.com/siegeline/siege/internal/core/ecs"
	coresys "github.com/siegeline/siege/internal/core/system"
)

// CleanupSystem flushes the spawn lease destroy queue at tick end, which
// returns dead actors' handles to their allocator.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
