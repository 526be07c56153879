package spawn

import (
	"time"

	"github.com/siegeline/siege/internal/core/ecs"
	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
	"go.uber.org/zap"
)

// fakeActor records what the engine did to it and lets tests kill it.
type fakeActor struct {
	typeID      int
	inits       int
	path        []data.Waypoint
	cfg         ActorConfig
	onDeath     func(DeathReason)
	deactivated int
	destroyed   bool
}

func (a *fakeActor) Initialize(path []data.Waypoint, cfg ActorConfig) {
	a.inits++
	a.path = path
	a.cfg = cfg
}

func (a *fakeActor) SetDeathHandler(fn func(DeathReason)) { a.onDeath = fn }
func (a *fakeActor) TakeDamage(float64)                   {}
func (a *fakeActor) Deactivate()                          { a.deactivated++ }
func (a *fakeActor) Destroy()                             { a.destroyed = true }

func (a *fakeActor) die(r DeathReason) {
	if a.onDeath != nil {
		a.onDeath(r)
	}
}

// fakeFactories builds fakeActors for the given ids plus the untyped default
// and remembers every actor it constructed.
type fakeFactories struct {
	reg   *FactoryRegistry
	built []*fakeActor
}

func newFakeFactories(typeIDs ...int) *fakeFactories {
	f := &fakeFactories{reg: NewFactoryRegistry()}
	mk := func(id int) Actor {
		a := &fakeActor{typeID: id}
		f.built = append(f.built, a)
		return a
	}
	f.reg.RegisterDefault(mk)
	for _, id := range typeIDs {
		f.reg.Register(id, mk)
	}
	return f
}

type staticPaths [][]data.Waypoint

func (p staticPaths) Paths() [][]data.Waypoint { return p }

func line(n int) []data.Waypoint {
	out := make([]data.Waypoint, n)
	for i := range out {
		out[i] = data.Waypoint{X: float64(i)}
	}
	return out
}

type completionLog struct {
	calls []int
}

func (c *completionLog) LaneCompleted(lane, round int) { c.calls = append(c.calls, lane) }

type killCounter int

func (k *killCounter) OnActorKilled() { *k++ }

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

const testInterval = time.Second

type harness struct {
	sched     *Scheduler
	factories *fakeFactories
	world     *ecs.World
	done      *completionLog
	kills     *killCounter
}

func newHarness(paths staticPaths, onePer bool) *harness {
	f := newFakeFactories()
	log := zap.NewNop()
	world := ecs.NewWorld()
	table := data.NewEnemyTable(nil)
	h := &harness{factories: f, world: world, done: &completionLog{}, kills: new(killCounter)}
	h.sched = NewScheduler(Config{
		SpawnInterval:  testInterval,
		OnePerInterval: onePer,
		Base:           BaseStats{Speed: 2, MaxHealth: 5, DamageToTower: 1, DefenderAttackRange: 1.2, DefenderAttackInterval: 0.6, DamageToDefender: 1},
	}, Deps{
		Paths:    paths,
		World:    world,
		Alloc:    NewPool(f.reg, log),
		Selector: NewSelector(table, f.reg.Has, fixedRand(0)),
		Catalog:  table,
		Kills:    h.kills,
		Log:      log,
	})
	h.sched.SetCompletionListener(h.done)
	return h
}

func roundParams(round, spawnsPerTick int) difficulty.RoundParameters {
	p := difficulty.Unscaled()
	p.Round = round
	p.RoundIndex = round - 1
	p.SpawnsPerTick = spawnsPerTick
	return p
}
