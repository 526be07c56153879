package spawn

import (
	"github.com/siegeline/siege/internal/data"
)

// DeathReason tells the lane why an actor left play.
type DeathReason int

const (
	Killed  DeathReason = iota // destroyed by the defence, grants the kill reward
	Escaped                    // reached the tower
)

func (r DeathReason) String() string {
	if r == Escaped {
		return "escaped"
	}
	return "killed"
}

// Actor is the runtime side of a spawned enemy. The engine never looks at
// how it moves or renders.
type Actor interface {
	Initialize(path []data.Waypoint, cfg ActorConfig)
	// SetDeathHandler installs the single death callback; nil clears it.
	SetDeathHandler(fn func(DeathReason))
	TakeDamage(amount float64)
	// Deactivate removes the actor from play without reporting a death.
	Deactivate()
}

// Destroyer is implemented by actors that own resources beyond the handle.
type Destroyer interface {
	Destroy()
}

// Factory constructs a fresh actor for a type id (data.UntypedID for the
// default enemy).
type Factory func(typeID int) Actor

// FactoryRegistry maps stable type ids to constructors. It is filled once
// at startup by the composition root.
type FactoryRegistry struct {
	factories map[int]Factory
}

func NewFactoryRegistry() *FactoryRegistry {
	return &FactoryRegistry{factories: make(map[int]Factory, 8)}
}

// Register binds typeID to fn. A nil fn removes the binding.
func (r *FactoryRegistry) Register(typeID int, fn Factory) {
	if fn == nil {
		delete(r.factories, typeID)
		return
	}
	r.factories[typeID] = fn
}

// RegisterDefault binds the untyped fallback constructor.
func (r *FactoryRegistry) RegisterDefault(fn Factory) {
	r.Register(data.UntypedID, fn)
}

// Has reports whether typeID has a backing constructor.
func (r *FactoryRegistry) Has(typeID int) bool {
	_, ok := r.factories[typeID]
	return ok
}

// Build constructs an actor for typeID, or nil when none is registered.
func (r *FactoryRegistry) Build(typeID int) Actor {
	fn, ok := r.factories[typeID]
	if !ok {
		return nil
	}
	return fn(typeID)
}
