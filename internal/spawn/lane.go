package spawn

import (
	"time"

	"github.com/siegeline/siege/internal/core/ecs"
	"github.com/siegeline/siege/internal/core/event"
	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
	"go.uber.org/zap"
)

// spawnRecord ties a live lease to the handle it borrowed.
type spawnRecord struct {
	handle *Handle
	typeID int
	round  int
	dead   bool
}

// Lane owns one waypoint path and spawns its share of each round along it.
// Accessed only from the game loop goroutine.
type Lane struct {
	index int
	path  []data.Waypoint
	s     *Scheduler

	params  difficulty.RoundParameters
	quota   int
	spawned int
	alive   int
	killed  int
	escaped int
	timer   time.Duration

	roundActive bool
	reported    bool
	enabled     bool

	leases *ecs.PtrComponentStore[spawnRecord]
}

func newLane(index int, path []data.Waypoint, s *Scheduler) *Lane {
	return &Lane{
		index:   index,
		path:    path,
		s:       s,
		enabled: len(path) > 0,
		leases:  ecs.NewPtrComponentStore[spawnRecord](),
	}
}

func (l *Lane) Index() int                         { return l.index }
func (l *Lane) Path() []data.Waypoint              { return l.path }
func (l *Lane) Quota() int                         { return l.quota }
func (l *Lane) Spawned() int                       { return l.spawned }
func (l *Lane) Alive() int                         { return l.alive }
func (l *Lane) Killed() int                        { return l.killed }
func (l *Lane) Escaped() int                       { return l.escaped }
func (l *Lane) Enabled() bool                      { return l.enabled }
func (l *Lane) RoundActive() bool                  { return l.roundActive }
func (l *Lane) Params() difficulty.RoundParameters { return l.params }

// Complete reports whether the lane has spawned its whole quota and every
// actor it spawned is gone.
func (l *Lane) Complete() bool {
	return l.spawned >= l.quota && l.alive == 0
}

// StartRound assigns the lane's quota for a new round. Actors still alive
// from earlier spawns keep counting toward alive.
func (l *Lane) StartRound(p difficulty.RoundParameters, quota int) {
	if quota < 0 {
		quota = 0
	}
	l.params = p
	l.quota = quota
	l.spawned = 0
	l.killed = 0
	l.escaped = 0
	l.timer = 0
	l.roundActive = true
	l.reported = false
}

// Tick advances the lane's spawn timer by dt and spawns when it fires.
func (l *Lane) Tick(dt time.Duration) {
	if !l.enabled || !l.roundActive {
		return
	}
	remaining := l.quota - l.spawned
	if remaining > 0 {
		l.timer += dt
		if l.timer >= l.interval() {
			l.timer = 0
			n := 1
			if !l.s.cfg.OnePerInterval {
				n = l.params.SpawnsPerTick
			}
			if n > remaining {
				n = remaining
			}
			for i := 0; i < n; i++ {
				if !l.spawnOne(l.params) {
					break
				}
			}
		}
	}
	l.checkComplete()
}

func (l *Lane) interval() time.Duration {
	return time.Duration(float64(l.s.cfg.SpawnInterval) * l.params.SpawnIntervalMultiplier)
}

// spawnOne selects a type, borrows a handle and puts the actor on the path.
func (l *Lane) spawnOne(p difficulty.RoundParameters) bool {
	s := l.s
	typeID := s.selector.Next()
	h, ok := s.alloc.Acquire(typeID)
	if !ok {
		s.log.Warn("spawn skipped, no actor available",
			zap.Int("lane", l.index), zap.Int("type_id", typeID))
		return false
	}

	cfg := Effective(s.cfg.Base, p, s.catalog.Get(h.TypeID))
	cfg.Lane = l.index

	lease := s.world.CreateEntity()
	l.leases.Set(lease, &spawnRecord{handle: h, typeID: h.TypeID, round: p.Round})
	h.Actor.Initialize(l.path, cfg)
	h.Actor.SetDeathHandler(func(reason DeathReason) {
		l.onDeath(lease, reason)
	})

	l.spawned++
	l.alive++
	if s.bus != nil {
		event.Emit(s.bus, event.ActorSpawned{Lane: l.index, TypeID: h.TypeID, Round: p.Round})
	}
	s.log.Debug("actor spawned",
		zap.Int("lane", l.index), zap.Int("type_id", h.TypeID), zap.Int("round", p.Round),
		zap.Float64("health", cfg.MaxHealth), zap.Float64("speed", cfg.Speed))
	return true
}

// onDeath runs once per lease. Deaths reported through a recycled handle or
// after a path reset find no live record and are dropped.
func (l *Lane) onDeath(lease ecs.EntityID, reason DeathReason) {
	s := l.s
	if !s.world.Alive(lease) {
		return
	}
	rec, ok := l.leases.Get(lease)
	if !ok || rec.dead {
		return
	}
	rec.dead = true
	if l.alive > 0 {
		l.alive--
	}
	if reason == Escaped {
		l.escaped++
	} else {
		l.killed++
		if s.kills != nil {
			s.kills.OnActorKilled()
		}
	}
	s.world.MarkForDestruction(lease)
	if s.bus != nil {
		event.Emit(s.bus, event.ActorDied{
			Lane: l.index, TypeID: rec.typeID, Round: rec.round, Escaped: reason == Escaped,
		})
	}
	l.checkComplete()
}

// Remove is called by the world registry when a lease is flushed; the
// borrowed handle goes back to its allocator here, never mid-tick.
func (l *Lane) Remove(lease ecs.EntityID) {
	rec, ok := l.leases.Take(lease)
	if !ok {
		return
	}
	l.s.alloc.Release(rec.handle)
}

func (l *Lane) checkComplete() {
	if !l.roundActive || l.reported || !l.enabled {
		return
	}
	if !l.Complete() {
		return
	}
	l.reported = true
	l.roundActive = false
	if l.s.listener != nil {
		l.s.listener.LaneCompleted(l.index, l.params.Round)
	}
}

// reset swaps in a new path and forgets every live spawn: counters drop to
// zero and borrowed handles return to the allocator at the next flush.
// A lane left without a path is disabled; if it still owed a completion for
// the running round it reports it now so the round can finish.
func (l *Lane) reset(path []data.Waypoint) {
	for _, lease := range l.leases.Keys() {
		rec, _ := l.leases.Get(lease)
		rec.dead = true
		rec.handle.Actor.SetDeathHandler(nil)
		l.s.world.MarkForDestruction(lease)
	}
	l.path = path
	l.enabled = len(path) > 0
	l.spawned = 0
	l.alive = 0
	l.quota = 0
	l.timer = 0
	if !l.enabled && l.roundActive && !l.reported {
		l.reported = true
		l.roundActive = false
		if l.s.listener != nil {
			l.s.listener.LaneCompleted(l.index, l.params.Round)
		}
	}
}
