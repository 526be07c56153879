package system

import (
	"time"

	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/world"
)

// WorldSystem moves live actors and runs the tower. Phase 1 (Update).
type WorldSystem struct {
	state *world.State
}

func NewWorldSystem(state *world.State) *WorldSystem {
	return &WorldSystem{state: state}
}

func (s *WorldSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *WorldSystem) Update(dt time.Duration) {
	s.state.Update(dt)
}
