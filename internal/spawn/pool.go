package spawn

import (
	"github.com/siegeline/siege/internal/data"
	"go.uber.org/zap"
)

// Handle is a reusable actor slot. While active it is lent to a lane; the
// allocator that built it takes it back on Release.
type Handle struct {
	TypeID int
	Actor  Actor
	active bool
	owner  Allocator
}

// Active reports whether the handle is currently lent out.
func (h *Handle) Active() bool { return h.active }

// Allocator is the acquire/release contract shared by the pooled and the
// direct strategy. The strategy is chosen once by the composition root.
type Allocator interface {
	Acquire(typeID int) (*Handle, bool)
	Release(h *Handle)
	WarmUp(typeID, count int)
	Stats() PoolStats
}

// PoolStats counts allocator activity.
type PoolStats struct {
	Constructed int
	Destroyed   int
	Reused      int
	Idle        int
}

// NewAllocator returns the pooled strategy when pooled is true, otherwise
// the direct one.
func NewAllocator(pooled bool, factories *FactoryRegistry, log *zap.Logger) Allocator {
	if pooled {
		return NewPool(factories, log)
	}
	return NewDirect(factories, log)
}

// build constructs a handle for typeID, falling back to the untyped factory
// when typeID has none.
func build(factories *FactoryRegistry, typeID int, owner Allocator, log *zap.Logger) (*Handle, bool) {
	a := factories.Build(typeID)
	if a == nil {
		log.Warn("no factory for enemy type, using default", zap.Int("type_id", typeID))
		typeID = data.UntypedID
		a = factories.Build(typeID)
	}
	if a == nil {
		log.Error("no default enemy factory registered")
		return nil, false
	}
	return &Handle{TypeID: typeID, Actor: a, owner: owner}, true
}

// Pool keeps one FIFO of idle handles per type id. A handle only ever
// returns to the queue of the type it was built for.
type Pool struct {
	factories *FactoryRegistry
	idle      map[int][]*Handle
	stats     PoolStats
	log       *zap.Logger
}

func NewPool(factories *FactoryRegistry, log *zap.Logger) *Pool {
	return &Pool{
		factories: factories,
		idle:      make(map[int][]*Handle, 8),
		log:       log,
	}
}

// Acquire pops an idle handle of typeID or builds a new one.
func (p *Pool) Acquire(typeID int) (*Handle, bool) {
	if q := p.idle[typeID]; len(q) > 0 {
		h := q[0]
		q[0] = nil
		p.idle[typeID] = q[1:]
		p.stats.Idle--
		p.stats.Reused++
		h.active = true
		return h, true
	}
	h, ok := build(p.factories, typeID, p, p.log)
	if !ok {
		return nil, false
	}
	p.stats.Constructed++
	h.active = true
	return h, true
}

// Release deactivates h, clears its death callback and queues it for reuse.
// Handles from another allocator and double releases are ignored.
func (p *Pool) Release(h *Handle) {
	if h == nil || h.owner != p || !h.active {
		return
	}
	h.active = false
	h.Actor.SetDeathHandler(nil)
	h.Actor.Deactivate()
	p.idle[h.TypeID] = append(p.idle[h.TypeID], h)
	p.stats.Idle++
}

// WarmUp pre-builds count idle handles for typeID.
func (p *Pool) WarmUp(typeID, count int) {
	for i := 0; i < count; i++ {
		h, ok := build(p.factories, typeID, p, p.log)
		if !ok {
			return
		}
		p.stats.Constructed++
		h.active = true
		p.Release(h)
	}
}

// IdleCount returns the number of queued handles for typeID.
func (p *Pool) IdleCount(typeID int) int {
	return len(p.idle[typeID])
}

func (p *Pool) Stats() PoolStats { return p.stats }

// Direct builds a new actor on every Acquire and destroys it on Release.
type Direct struct {
	factories *FactoryRegistry
	stats     PoolStats
	log       *zap.Logger
}

func NewDirect(factories *FactoryRegistry, log *zap.Logger) *Direct {
	return &Direct{factories: factories, log: log}
}

func (d *Direct) Acquire(typeID int) (*Handle, bool) {
	h, ok := build(d.factories, typeID, d, d.log)
	if !ok {
		return nil, false
	}
	d.stats.Constructed++
	h.active = true
	return h, true
}

func (d *Direct) Release(h *Handle) {
	if h == nil || h.owner != d || !h.active {
		return
	}
	h.active = false
	h.Actor.SetDeathHandler(nil)
	h.Actor.Deactivate()
	if ds, ok := h.Actor.(Destroyer); ok {
		ds.Destroy()
	}
	h.Actor = nil
	d.stats.Destroyed++
}

// WarmUp is a no-op: nothing is kept between uses.
func (d *Direct) WarmUp(int, int) {}

func (d *Direct) Stats() PoolStats { return d.stats }
