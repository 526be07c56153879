package spawn

import (
	"testing"
	"time"

	"github.com/siegeline/siege/internal/data"
	"github.com/siegeline/siege/internal/difficulty"
)

func activeActors(f *fakeFactories) []*fakeActor {
	var out []*fakeActor
	for _, a := range f.built {
		if a.onDeath != nil {
			out = append(out, a)
		}
	}
	return out
}

func TestLaneSpawnsQuotaThenCompletes(t *testing.T) {
	h := newHarness(staticPaths{line(3)}, true)
	lanes := h.sched.ActiveLanes()
	if len(lanes) != 1 {
		t.Fatalf("lanes = %d, want 1", len(lanes))
	}
	lane := lanes[0]
	lane.StartRound(roundParams(1, 1), 2)

	h.sched.Tick(testInterval / 2)
	if lane.Spawned() != 0 {
		t.Fatal("spawned before the interval elapsed")
	}
	h.sched.Tick(testInterval / 2)
	h.sched.Tick(testInterval)
	h.sched.Tick(testInterval)
	if lane.Spawned() != 2 || lane.Alive() != 2 {
		t.Fatalf("spawned/alive = %d/%d, want 2/2", lane.Spawned(), lane.Alive())
	}
	if len(h.done.calls) != 0 {
		t.Fatal("lane reported completion with actors alive")
	}

	for _, a := range activeActors(h.factories) {
		a.die(Killed)
	}
	if len(h.done.calls) != 1 {
		t.Fatalf("completion calls = %d, want 1", len(h.done.calls))
	}
	if int(*h.kills) != 2 {
		t.Fatalf("kills = %d, want 2", int(*h.kills))
	}

	h.sched.Tick(testInterval)
	if len(h.done.calls) != 1 {
		t.Fatal("completion reported twice")
	}
}

func TestLaneZeroQuotaCompletesOnNextTick(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(1, 1), 0)
	h.sched.Tick(time.Millisecond)
	if len(h.done.calls) != 1 {
		t.Fatalf("zero-quota lane completion calls = %d, want 1", len(h.done.calls))
	}
}

func TestLaneBurstHonoursRemaining(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, false)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(4, 3), 4)

	h.sched.Tick(testInterval)
	if lane.Spawned() != 3 {
		t.Fatalf("first burst spawned %d, want 3", lane.Spawned())
	}
	h.sched.Tick(testInterval)
	if lane.Spawned() != 4 {
		t.Fatalf("second burst spawned %d total, want capped at quota 4", lane.Spawned())
	}
	h.sched.Tick(testInterval)
	if lane.Spawned() > lane.Quota() {
		t.Fatalf("spawned %d exceeds quota %d", lane.Spawned(), lane.Quota())
	}
}

func TestLaneIntervalScalesWithRound(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	p := roundParams(2, 1)
	p.SpawnIntervalMultiplier = 0.5
	lane.StartRound(p, 1)
	h.sched.Tick(testInterval / 2)
	if lane.Spawned() != 1 {
		t.Fatal("halved interval did not fire at half the base interval")
	}
}

func TestLaneAppliesEffectiveStats(t *testing.T) {
	f := newFakeFactories(5)
	h := newHarness(staticPaths{line(4)}, true)
	table := data.NewEnemyTable([]data.EnemyType{{
		TypeID: 5, SpawnWeight: 1, HealthMultiplier: 2, SpeedMultiplier: 0.5,
		OverrideAttackRange: true, AttackRange: 3,
	}})
	h.sched.catalog = table
	h.sched.selector = NewSelector(table, f.reg.Has, fixedRand(0))
	h.sched.alloc = NewPool(f.reg, h.sched.log)
	h.factories = f

	lane := h.sched.ActiveLanes()[0]
	p := roundParams(3, 1)
	p.HealthMultiplier = 1.5
	lane.StartRound(p, 1)
	h.sched.Tick(testInterval)

	a := f.built[0]
	if a.inits != 1 || len(a.path) != 4 {
		t.Fatalf("actor init = %d path len %d", a.inits, len(a.path))
	}
	if a.cfg.TypeID != 5 || a.cfg.MaxHealth != 5*1.5*2 || a.cfg.Speed != 1 || a.cfg.AttackRange != 3 {
		t.Fatalf("effective config = %+v", a.cfg)
	}
	if a.cfg.Round != 3 || a.cfg.Lane != 0 {
		t.Fatalf("config round/lane = %d/%d", a.cfg.Round, a.cfg.Lane)
	}
}

func TestLaneDeathReleasesHandleAtFlush(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(1, 1), 1)
	h.sched.Tick(testInterval)

	pool := h.sched.alloc.(*Pool)
	a := h.factories.built[0]
	a.die(Escaped)
	if pool.IdleCount(data.UntypedID) != 0 {
		t.Fatal("handle released before the cleanup flush")
	}
	if lane.Escaped() != 1 || int(*h.kills) != 0 {
		t.Fatalf("escaped=%d kills=%d, want 1/0", lane.Escaped(), int(*h.kills))
	}

	a.die(Killed) // duplicate death report
	if lane.Alive() != 0 || lane.Killed() != 0 {
		t.Fatalf("duplicate death counted: alive=%d killed=%d", lane.Alive(), lane.Killed())
	}

	h.world.FlushDestroyQueue()
	if pool.IdleCount(data.UntypedID) != 1 {
		t.Fatal("handle not back in pool after flush")
	}
	if a.onDeath != nil {
		t.Fatal("death handler not cleared on release")
	}
}

func TestLaneStaleLeaseIgnoredAfterReuse(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(1, 1), 2)
	h.sched.Tick(testInterval)

	a := h.factories.built[0]
	oldHandler := a.onDeath
	a.die(Killed)
	h.world.FlushDestroyQueue()

	h.sched.Tick(testInterval) // reuses the same actor
	if len(h.factories.built) != 1 {
		t.Fatalf("built %d actors, want reuse of 1", len(h.factories.built))
	}
	oldHandler(Killed) // late callback from the previous life
	if lane.Alive() != 1 {
		t.Fatalf("stale death decremented alive to %d", lane.Alive())
	}
}

func TestSchedulerSkipsEmptyPaths(t *testing.T) {
	h := newHarness(staticPaths{line(2), nil, line(3)}, true)
	lanes := h.sched.ActiveLanes()
	if len(lanes) != 2 {
		t.Fatalf("active lanes = %d, want 2", len(lanes))
	}
	if len(lanes[1].Path()) != 3 {
		t.Fatal("lanes out of path order")
	}
}

func TestSchedulerNoPathsMeansNoLanes(t *testing.T) {
	h := newHarness(nil, true)
	if n := len(h.sched.ActiveLanes()); n != 0 {
		t.Fatalf("lanes = %d, want 0", n)
	}
}

func TestSchedulerRefreshResetsCounters(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(1, 1), 3)
	h.sched.Tick(testInterval)
	h.sched.Tick(testInterval)

	h.sched.Refresh()
	if lane.Spawned() != 0 || lane.Alive() != 0 || lane.Quota() != 0 {
		t.Fatalf("after refresh spawned/alive/quota = %d/%d/%d", lane.Spawned(), lane.Alive(), lane.Quota())
	}
	h.world.FlushDestroyQueue()
	if idle := h.sched.alloc.(*Pool).IdleCount(data.UntypedID); idle != 2 {
		t.Fatalf("idle after refresh flush = %d, want 2", idle)
	}
	// the running round still completes with the reset lane
	h.sched.Tick(time.Millisecond)
	if len(h.done.calls) != 1 {
		t.Fatalf("completion calls = %d, want 1", len(h.done.calls))
	}
}

func TestSchedulerRefreshDroppingLaneReportsCompletion(t *testing.T) {
	paths := staticPaths{line(2), line(2)}
	h := newHarness(paths, true)
	lanes := h.sched.ActiveLanes()
	for _, l := range lanes {
		l.StartRound(roundParams(1, 1), 1)
	}
	h.sched.paths = staticPaths{line(2)}
	if n := h.sched.Refresh(); n != 1 {
		t.Fatalf("refresh enabled %d lanes, want 1", n)
	}
	if lanes[1].Enabled() {
		t.Fatal("lane without a path still enabled")
	}
	if len(h.done.calls) != 1 || h.done.calls[0] != 1 {
		t.Fatalf("dropped lane completion = %v, want [1]", h.done.calls)
	}
}

func TestSchedulerRefreshKeepsLaneToPathMapping(t *testing.T) {
	h := newHarness(staticPaths{line(2), line(3), line(4)}, true)
	lanes := h.sched.ActiveLanes()
	if len(lanes) != 3 {
		t.Fatalf("lanes = %d, want 3", len(lanes))
	}

	h.sched.paths = staticPaths{line(2), nil, line(4)}
	if n := h.sched.Refresh(); n != 2 {
		t.Fatalf("refresh enabled %d lanes, want 2", n)
	}
	if !lanes[0].Enabled() || lanes[1].Enabled() || !lanes[2].Enabled() {
		t.Fatalf("enabled = %v/%v/%v, want true/false/true",
			lanes[0].Enabled(), lanes[1].Enabled(), lanes[2].Enabled())
	}
	if got := len(lanes[2].Path()); got != 4 {
		t.Fatalf("lane 2 path length = %d, want its own path of 4", got)
	}
	active := h.sched.ActiveLanes()
	if len(active) != 2 || active[0].Index() != 0 || active[1].Index() != 2 {
		t.Fatalf("active lanes = %d, want lanes 0 and 2", len(active))
	}
}

func TestSchedulerContinuousRoundRobin(t *testing.T) {
	h := newHarness(staticPaths{line(2), line(2), line(2)}, true)
	h.sched.cfg.Continuous = true
	for i := 0; i < 6; i++ {
		h.sched.Tick(testInterval)
	}
	for _, l := range h.sched.Lanes() {
		if l.Spawned() != 2 {
			t.Fatalf("lane %d spawned %d, want 2 (even time-slicing)", l.Index(), l.Spawned())
		}
	}
	if h.sched.Alive() != 6 {
		t.Fatalf("alive = %d, want 6", h.sched.Alive())
	}
}

func TestSchedulerDisableStopsProduction(t *testing.T) {
	h := newHarness(staticPaths{line(2)}, true)
	lane := h.sched.ActiveLanes()[0]
	lane.StartRound(roundParams(1, 1), 5)
	h.sched.Disable()
	h.sched.Tick(10 * testInterval)
	if lane.Spawned() != 0 {
		t.Fatal("disabled scheduler spawned")
	}
	if len(h.sched.ActiveLanes()) != 0 {
		t.Fatal("disabled scheduler still reports active lanes")
	}
}

func TestEffectiveUntypedUsesBase(t *testing.T) {
	base := BaseStats{Speed: 2, MaxHealth: 5, DamageToTower: 1, DefenderAttackRange: 1.2, DefenderAttackInterval: 0.6, DamageToDefender: 1}
	p := difficulty.Unscaled()
	p.DamageMultiplier = 2
	cfg := Effective(base, p, nil)
	if cfg.TypeID != data.UntypedID || cfg.TowerDamage != 2 || cfg.DefenderDamage != 2 {
		t.Fatalf("untyped config = %+v", cfg)
	}
	if cfg.AttackPriority != data.TowerFirst || cfg.DamageTakenMultiplier != 1 {
		t.Fatalf("untyped defaults = %+v", cfg)
	}
}

func TestEffectiveOverridesOnlyWhenOptedIn(t *testing.T) {
	base := BaseStats{DefenderAttackRange: 1.2, DefenderAttackInterval: 0.6}
	def := &data.EnemyType{TypeID: 1, AttackRange: 9, AttackInterval: 9, OverrideAttackInterval: true}
	def.Normalize()
	cfg := Effective(base, difficulty.Unscaled(), def)
	if cfg.AttackRange != 1.2 {
		t.Errorf("range overridden without opt-in: %v", cfg.AttackRange)
	}
	if cfg.AttackInterval != 9 {
		t.Errorf("interval override ignored: %v", cfg.AttackInterval)
	}
}
