package world

import (
	"math"

	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/spawn"
)

// Actor is the headless enemy runtime. It walks its lane path, damages the
// tower on arrival and dies either killed or escaped.
// Accessed only from the game loop goroutine, no locks.
type Actor struct {
	ID     int32
	TypeID int // catalog type the handle was built for

	state *State
	cfg   spawn.ActorConfig
	path  []data.Waypoint
	pos   data.Waypoint
	next  int // index of the waypoint being walked to

	length    float64 // total path length
	travelled float64

	HP    float64
	MaxHP float64

	speed          float64
	towerDamage    float64
	defenderDamage float64
	attackInterval float64

	enraged bool
	active  bool
	onDeath func(spawn.DeathReason)
}

// Initialize places the actor at the start of path with a fresh config.
// Called on every reuse.
func (a *Actor) Initialize(path []data.Waypoint, cfg spawn.ActorConfig) {
	a.cfg = cfg
	a.path = path
	a.next = 1
	a.travelled = 0
	a.length = pathLength(path)
	if len(path) > 0 {
		a.pos = path[0]
	}
	a.MaxHP = cfg.MaxHealth
	a.HP = cfg.MaxHealth
	a.speed = cfg.Speed
	a.towerDamage = cfg.TowerDamage
	a.defenderDamage = cfg.DefenderDamage
	a.attackInterval = cfg.AttackInterval
	a.enraged = false
	a.active = true
	a.state.add(a)
}

func (a *Actor) SetDeathHandler(fn func(spawn.DeathReason)) { a.onDeath = fn }

// Deactivate takes the actor out of the world without reporting a death.
func (a *Actor) Deactivate() {
	a.active = false
	a.state.remove(a)
}

// Destroy is used by the direct allocator instead of requeuing.
func (a *Actor) Destroy() {
	a.Deactivate()
	a.path = nil
	a.onDeath = nil
}

// TakeDamage applies amount scaled by the type's damage-taken multiplier.
func (a *Actor) TakeDamage(amount float64) {
	if !a.active || amount <= 0 {
		return
	}
	a.HP -= amount * a.cfg.DamageTakenMultiplier
	if a.HP <= 0 {
		a.HP = 0
		a.die(spawn.Killed)
		return
	}
	a.checkEnrage()
}

// checkEnrage switches the actor into its enraged stats once, the first time
// health falls to the trigger fraction.
func (a *Actor) checkEnrage() {
	e := a.cfg.Enrage
	if a.enraged || e.TriggerFraction <= 0 || a.MaxHP <= 0 {
		return
	}
	if a.HP/a.MaxHP > e.TriggerFraction {
		return
	}
	a.enraged = true
	a.speed *= 1 + e.SpeedBonus
	a.towerDamage *= 1 + e.DamageBonus
	a.defenderDamage *= 1 + e.DamageBonus
	if e.IntervalMultiplier > 0 {
		a.attackInterval *= e.IntervalMultiplier
	}
}

// Update moves the actor dt seconds along its path. Reaching the last
// waypoint damages the tower and the actor escapes.
func (a *Actor) Update(dt float64) {
	if !a.active {
		return
	}
	step := a.speed * dt
	for step > 0 && a.next < len(a.path) {
		target := a.path[a.next]
		d := distance(a.pos, target)
		if d <= step {
			a.pos = target
			a.travelled += d
			step -= d
			a.next++
			continue
		}
		f := step / d
		a.pos.X += (target.X - a.pos.X) * f
		a.pos.Y += (target.Y - a.pos.Y) * f
		a.pos.Z += (target.Z - a.pos.Z) * f
		a.travelled += step
		step = 0
	}
	if a.next >= len(a.path) {
		if t := a.state.tower; t != nil {
			t.TakeDamage(a.towerDamage)
		}
		a.die(spawn.Escaped)
	}
}

func (a *Actor) die(reason spawn.DeathReason) {
	a.active = false
	a.state.remove(a)
	if fn := a.onDeath; fn != nil {
		fn(reason)
	}
}

func (a *Actor) Active() bool                  { return a.active }
func (a *Actor) Enraged() bool                 { return a.enraged }
func (a *Actor) Position() data.Waypoint       { return a.pos }
func (a *Actor) Speed() float64                { return a.speed }
func (a *Actor) TowerDamage() float64          { return a.towerDamage }
func (a *Actor) DefenderDamage() float64       { return a.defenderDamage }
func (a *Actor) AttackInterval() float64       { return a.attackInterval }
func (a *Actor) Config() spawn.ActorConfig     { return a.cfg }
func (a *Actor) Remaining() float64            { return math.Max(0, a.length-a.travelled) }
func (a *Actor) Priority() data.AttackPriority { return a.cfg.AttackPriority }

func pathLength(path []data.Waypoint) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += distance(path[i-1], path[i])
	}
	return total
}

func distance(a, b data.Waypoint) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
