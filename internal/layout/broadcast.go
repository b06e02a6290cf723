package layout

import "sync"

// Change is a layout change notification. State is always the complete
// new layout object, never a partial patch.
type Change struct {
	Role     string
	State    State
	External bool // written by another execution context
}

// Bus fans layout changes out to in-process observers (other mounted
// panels, the TUI orchestrator). Handlers run synchronously on the
// publishing goroutine.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Change)
}

// NewBus creates an empty broadcast bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Change))}
}

// Subscribe registers fn and returns an unsubscribe function.
func (b *Bus) Subscribe(fn func(Change)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers ch to every subscriber. Each subscriber receives its
// own copy of the state so handlers cannot alias each other's maps.
func (b *Bus) Publish(ch Change) {
	b.mu.RLock()
	fns := make([]func(Change), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(Change{Role: ch.Role, State: ch.State.Clone(), External: ch.External})
	}
}
