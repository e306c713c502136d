// Package store implements the normalized entity caches backing the Verdin
// client. Each entity type gets one Store: a map from a unique key to a
// reactive cell holding that entity's current known state. All writes go
// through the owning store; anyone may read a cell's current value.
package store

import "sync"

// Cell is a reactive value holder. It carries a version counter bumped on
// every write and a subscriber registry so derived views can recompute only
// when their input actually changed.
type Cell[V any] struct {
	mu      sync.RWMutex
	value   V
	version uint64
	subs    map[int]func(V)
	nextSub int
}

// NewCell creates a cell holding the given initial value.
func NewCell[V any](value V) *Cell[V] {
	return &Cell[V]{value: value, version: 1}
}

// Get returns the current value.
func (c *Cell[V]) Get() V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version returns the current version counter. It starts at 1 and increases
// by exactly one per write, so a reader can cheaply detect staleness.
func (c *Cell[V]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Subscribe registers fn to be called with the new value after every write.
// The returned cancel func removes the subscription and is safe to call
// more than once.
func (c *Cell[V]) Subscribe(fn func(V)) (cancel func()) {
	c.mu.Lock()
	if c.subs == nil {
		c.subs = make(map[int]func(V))
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// update applies fn to the current value as one read-modify-write step.
// Subscribers are notified outside the lock so a handler may read the cell.
func (c *Cell[V]) update(fn func(V) V) {
	c.mu.Lock()
	c.value = fn(c.value)
	c.version++
	value := c.value
	var subs []func(V)
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(value)
	}
}

// set replaces the current value.
func (c *Cell[V]) set(value V) {
	c.update(func(V) V { return value })
}
