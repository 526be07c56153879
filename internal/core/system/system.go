package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last tick's notifications
	PhaseUpdate                  // 1: actor movement, tower attacks
	PhaseSpawn                   // 2: lane spawn timers
	PhasePostUpdate              // 3: round director timers
	PhasePersist                 // 4: run history writes
	PhaseCleanup                 // 5: release dead actors to the pool
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Initializer is implemented by systems that need setup before the first tick.
type Initializer interface {
	Init() error
}

// Shutdowner is implemented by systems that hold subscriptions or resources.
type Shutdowner interface {
	Shutdown()
}
