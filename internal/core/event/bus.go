package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered notification bus. Events emitted in tick N are
// delivered in tick N+1 when the dispatch system calls SwapBuffers and
// DispatchAll.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]*handlerEntry
	nextID   uint64
}

type handlerEntry struct {
	id uint64
	fn func(any)
}

// Subscription scopes a handler to its subscriber's lifetime. Cancel is
// idempotent; a cancelled handler never runs again.
type Subscription struct {
	bus *Bus
	t   reflect.Type
	id  uint64
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]*handlerEntry),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer (delivered next dispatch).
func Emit[T any](b *Bus, ev T) {
	t := typeKey[T]()
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.nextID++
	entry := &handlerEntry{
		id: b.nextID,
		fn: func(ev any) { fn(ev.(T)) },
	}
	b.handlers[t] = append(b.handlers[t], entry)
	return &Subscription{bus: b, t: t, id: entry.id}
}

// Cancel removes the handler from the bus.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[s.t]
	for i, h := range list {
		if h.id == s.id {
			// copy so an in-flight delivery over the old slice is unaffected
			next := make([]*handlerEntry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			b.handlers[s.t] = next
			break
		}
	}
	s.bus = nil
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		for _, ev := range events {
			b.deliver(t, ev)
		}
		b.front[t] = events[:0]
	}
}

// Pending reports how many events wait in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, events := range b.back {
		n += len(events)
	}
	return n
}

func (b *Bus) deliver(t reflect.Type, ev any) {
	b.mu.Lock()
	handlers := b.handlers[t]
	b.mu.Unlock()
	for _, h := range handlers {
		h.fn(ev)
	}
}
