package system

import (
	"fmt"
	"sort"
	"time"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Init calls Init on every system that implements Initializer, in phase order.
func (r *Runner) Init() error {
	r.ensureSorted()
	for _, s := range r.systems {
		if in, ok := s.(Initializer); ok {
			if err := in.Init(); err != nil {
				return fmt.Errorf("init %T: %w", s, err)
			}
		}
	}
	return nil
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase runs only the systems registered for the given phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

// Shutdown tears systems down in reverse phase order.
func (r *Runner) Shutdown() {
	r.ensureSorted()
	for i := len(r.systems) - 1; i >= 0; i-- {
		if sd, ok := r.systems[i].(Shutdowner); ok {
			sd.Shutdown()
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
