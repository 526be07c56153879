package system

import (
	"time"

	coresys "github.com/siegeline/siege/internal/core/system"
	"github.com/siegeline/siege/internal/round"
)

// RoundSystem advances the director's deferred round start and, when
// configured, begins the game on Init. Phase 3 (PostUpdate).
type RoundSystem struct {
	dir       *round.Director
	autoStart bool
}

func NewRoundSystem(dir *round.Director, autoStart bool) *RoundSystem {
	return &RoundSystem{dir: dir, autoStart: autoStart}
}

func (s *RoundSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RoundSystem) Init() error {
	if s.autoStart {
		s.dir.BeginGame()
	}
	return nil
}

func (s *RoundSystem) Update(dt time.Duration) {
	s.dir.Tick(dt)
}
