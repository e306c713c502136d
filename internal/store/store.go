package store

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
)

// KeyFunc extracts the unique key from an entity value.
type KeyFunc[K comparable, V any] func(V) K

// MergeFunc folds a fresh server copy into an existing cached value. It is
// where locally-authoritative fields (isLiked, isSaved, isFollowing) are
// carried over so a background refresh cannot undo an in-flight optimistic
// toggle.
type MergeFunc[V any] func(existing, incoming V) V

// Store is a per-entity-type map from key to reactive cell.
//
// Stores never return errors: mutating or removing an absent key is a
// logged no-op. That trades strictness for availability — a completion
// callback holding a stale key must not blow up the client because the
// session was torn down while its request was in flight.
type Store[K comparable, V any] struct {
	name    string
	keyFn   KeyFunc[K, V]
	mergeFn MergeFunc[V]
	logger  zerolog.Logger

	mu          sync.RWMutex
	cells       map[K]*Cell[V]
	removeHooks []func(K)
}

// New creates a Store. mergeFn may be nil, in which case a fresh server
// copy replaces the cached value wholesale.
func New[K comparable, V any](name string, keyFn KeyFunc[K, V], mergeFn MergeFunc[V]) *Store[K, V] {
	if mergeFn == nil {
		mergeFn = func(_, incoming V) V { return incoming }
	}
	return &Store[K, V]{
		name:    name,
		keyFn:   keyFn,
		mergeFn: mergeFn,
		logger:  logging.Component("store." + name),
		cells:   make(map[K]*Cell[V]),
	}
}

// Load upserts a batch of server items. Absent keys get a new cell; present
// keys are merged through the store's MergeFunc.
func (s *Store[K, V]) Load(items []V) {
	type pending struct {
		cell  *Cell[V]
		value V
	}
	var updates []pending

	s.mu.Lock()
	for _, item := range items {
		key := s.keyFn(item)
		if cell, ok := s.cells[key]; ok {
			updates = append(updates, pending{cell: cell, value: s.mergeFn(cell.Get(), item)})
		} else {
			s.cells[key] = NewCell(item)
		}
	}
	s.mu.Unlock()

	// Apply merges outside the map lock so cell subscribers may call back
	// into the store.
	for _, u := range updates {
		u.cell.set(u.value)
	}
}

// Get returns the cell for key. Absence is not an error.
func (s *Store[K, V]) Get(key K) (*Cell[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cell, ok := s.cells[key]
	return cell, ok
}

// Mutate applies fn to the cell's current value as a single atomic step.
// Returns false (and logs) if the key is absent.
func (s *Store[K, V]) Mutate(key K, fn func(V) V) bool {
	s.mu.RLock()
	cell, ok := s.cells[key]
	s.mu.RUnlock()

	if !ok {
		s.logger.Debug().Str("key", fmt.Sprint(key)).Msg("mutate on absent key, ignoring")
		return false
	}
	cell.update(fn)
	return true
}

// Remove deletes the entry for key and fires the removal hooks so
// externally held id-lists can filter themselves. Returns false (and logs)
// if the key is absent.
func (s *Store[K, V]) Remove(key K) bool {
	s.mu.Lock()
	_, ok := s.cells[key]
	if ok {
		delete(s.cells, key)
	}
	hooks := make([]func(K), len(s.removeHooks))
	copy(hooks, s.removeHooks)
	s.mu.Unlock()

	if !ok {
		s.logger.Debug().Str("key", fmt.Sprint(key)).Msg("remove on absent key, ignoring")
		return false
	}
	for _, hook := range hooks {
		hook(key)
	}
	return true
}

// OnRemove registers a hook invoked with the key of every removed entry.
func (s *Store[K, V]) OnRemove(hook func(K)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeHooks = append(s.removeHooks, hook)
}

// Clear empties the store. Calling it on an already-empty store is a no-op.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	n := len(s.cells)
	if n > 0 {
		s.cells = make(map[K]*Cell[V])
	}
	s.mu.Unlock()

	if n > 0 {
		s.logger.Debug().Int("entries", n).Msg("store cleared")
	}
}

// Len returns the number of cached entities.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Keys returns a snapshot of the cached keys, in no particular order.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]K, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	return keys
}
