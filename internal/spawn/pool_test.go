package spawn

import (
	"testing"

	"github.com/siegeline/siege/internal/data"
	"go.uber.org/zap"
)

func TestPoolReusesReleasedHandle(t *testing.T) {
	f := newFakeFactories(1)
	p := NewPool(f.reg, zap.NewNop())

	h1, ok := p.Acquire(1)
	if !ok {
		t.Fatal("acquire failed")
	}
	p.Release(h1)
	h2, _ := p.Acquire(1)

	if h1 != h2 {
		t.Fatal("second acquire built a new handle instead of reusing")
	}
	if st := p.Stats(); st.Constructed != 1 || st.Reused != 1 {
		t.Fatalf("stats = %+v, want 1 constructed 1 reused", st)
	}
	if len(f.built) != 1 {
		t.Fatalf("factory called %d times, want 1", len(f.built))
	}
}

func TestPoolReleaseClearsCallbackAndDeactivates(t *testing.T) {
	f := newFakeFactories(1)
	p := NewPool(f.reg, zap.NewNop())
	h, _ := p.Acquire(1)
	a := h.Actor.(*fakeActor)
	a.SetDeathHandler(func(DeathReason) { t.Fatal("stale callback fired") })

	p.Release(h)
	if h.Active() {
		t.Fatal("handle still active after release")
	}
	if a.deactivated != 1 {
		t.Fatalf("deactivated %d times, want 1", a.deactivated)
	}
	a.die(Killed)

	p.Release(h) // double release
	if p.IdleCount(1) != 1 {
		t.Fatalf("double release queued twice: idle=%d", p.IdleCount(1))
	}
}

func TestPoolQueuesAreKeyedByType(t *testing.T) {
	f := newFakeFactories(1, 2)
	p := NewPool(f.reg, zap.NewNop())
	h1, _ := p.Acquire(1)
	p.Release(h1)

	h2, _ := p.Acquire(2)
	if h2 == h1 {
		t.Fatal("type 2 acquire returned a type 1 handle")
	}
	if p.IdleCount(1) != 1 || p.IdleCount(2) != 0 {
		t.Fatalf("idle counts = %d/%d, want 1/0", p.IdleCount(1), p.IdleCount(2))
	}
}

func TestPoolWarmUp(t *testing.T) {
	f := newFakeFactories(1)
	p := NewPool(f.reg, zap.NewNop())
	p.WarmUp(1, 4)
	if p.IdleCount(1) != 4 {
		t.Fatalf("idle after warm-up = %d, want 4", p.IdleCount(1))
	}
	for i := 0; i < 4; i++ {
		p.Acquire(1)
	}
	if got := p.Stats().Constructed; got != 4 {
		t.Fatalf("constructed %d, want 4 (no construction after warm-up)", got)
	}
	p.Acquire(1)
	if got := p.Stats().Constructed; got != 5 {
		t.Fatalf("underflow did not construct on demand: %d", got)
	}
}

func TestPoolUnknownTypeFallsBackToDefault(t *testing.T) {
	f := newFakeFactories()
	p := NewPool(f.reg, zap.NewNop())
	h, ok := p.Acquire(99)
	if !ok || h.TypeID != data.UntypedID {
		t.Fatalf("acquire unknown = %+v %v, want untyped handle", h, ok)
	}
	p.Release(h)
	if p.IdleCount(data.UntypedID) != 1 {
		t.Fatal("fallback handle not returned to the untyped queue")
	}
}

func TestPoolRejectsForeignHandle(t *testing.T) {
	f := newFakeFactories(1)
	a := NewPool(f.reg, zap.NewNop())
	b := NewPool(f.reg, zap.NewNop())
	h, _ := a.Acquire(1)
	b.Release(h)
	if b.IdleCount(1) != 0 || !h.Active() {
		t.Fatal("pool accepted a handle it does not own")
	}
}

func TestDirectDestroysOnRelease(t *testing.T) {
	f := newFakeFactories(1)
	d := NewDirect(f.reg, zap.NewNop())
	d.WarmUp(1, 10)
	h, _ := d.Acquire(1)
	a := h.Actor.(*fakeActor)
	d.Release(h)
	if !a.destroyed {
		t.Fatal("direct release did not destroy the actor")
	}
	h2, _ := d.Acquire(1)
	if h2 == h {
		t.Fatal("direct strategy reused a handle")
	}
	if st := d.Stats(); st.Constructed != 2 || st.Destroyed != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestNewAllocatorSelectsStrategy(t *testing.T) {
	f := newFakeFactories()
	if _, ok := NewAllocator(true, f.reg, zap.NewNop()).(*Pool); !ok {
		t.Error("pooled=true should build a Pool")
	}
	if _, ok := NewAllocator(false, f.reg, zap.NewNop()).(*Direct); !ok {
		t.Error("pooled=false should build a Direct allocator")
	}
}
