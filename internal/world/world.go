// Package world is the headless runtime that moves spawned actors and runs
// the tower. It stands in for a rendered scene in the CLI and in tests.
package world

import (
	"time"

	"github.com/siegeline/siege/internal/spawn"
	"go.uber.org/zap"
)

// State holds the live actors and the tower.
// Accessed only from the game loop goroutine, no locks needed.
type State struct {
	tower  *Tower
	live   []*Actor
	nextID int32
	built  int
	log    *zap.Logger
}

func NewState(tower *Tower, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{tower: tower, log: log}
}

// Factory returns the spawn factory building actors bound to this state.
func (s *State) Factory() spawn.Factory {
	return func(typeID int) spawn.Actor {
		return s.NewActor(typeID)
	}
}

// NewActor constructs an inactive actor.
func (s *State) NewActor(typeID int) *Actor {
	s.nextID++
	s.built++
	return &Actor{ID: s.nextID, TypeID: typeID, state: s}
}

func (s *State) Tower() *Tower    { return s.tower }
func (s *State) Actors() []*Actor { return s.live }
func (s *State) ActorCount() int  { return len(s.live) }
func (s *State) BuiltCount() int  { return s.built }

func (s *State) add(a *Actor) {
	for _, x := range s.live {
		if x == a {
			return
		}
	}
	s.live = append(s.live, a)
}

func (s *State) remove(a *Actor) {
	for i, x := range s.live {
		if x == a {
			s.live = append(s.live[:i], s.live[i+1:]...)
			return
		}
	}
}

// Update advances every live actor and then the tower by dt.
func (s *State) Update(dt time.Duration) {
	secs := dt.Seconds()
	snapshot := make([]*Actor, len(s.live))
	copy(snapshot, s.live)
	for _, a := range snapshot {
		a.Update(secs)
	}
	if s.tower != nil {
		s.tower.Update(secs, s.live)
	}
}
