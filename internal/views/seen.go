// Package views tracks which threads the current session has already
// viewed, so the client can report a view at most once per session.
package views

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/localstore"
	"github.com/verdinapp/verdin/internal/logging"
)

// SeenSet is a presence-only set of viewed thread ids persisted to the
// session scope of the local store on every mutation. A reload within the
// same session recovers it; a new session starts empty.
type SeenSet struct {
	mu     sync.Mutex
	kv     localstore.KV
	ids    map[string]struct{}
	logger zerolog.Logger
}

// New creates a seen-set backed by kv, reloading whatever the current
// session previously persisted.
func New(kv localstore.KV) *SeenSet {
	s := &SeenSet{
		kv:     kv,
		ids:    make(map[string]struct{}),
		logger: logging.Component("views"),
	}
	s.Reload()
	return s
}

// Reload replaces the in-memory set with whatever the storage key holds.
// Called after the storage rebinds to a session, so the set reflects that
// session's markers and nothing else.
func (s *SeenSet) Reload() {
	var stored []string
	found, err := s.kv.Get(localstore.ScopeSession, localstore.KeyViewedThreads, &stored)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to reload viewed threads")
		return
	}

	s.mu.Lock()
	s.ids = make(map[string]struct{}, len(stored))
	if found {
		for _, id := range stored {
			s.ids[id] = struct{}{}
		}
	}
	s.mu.Unlock()
}

// MarkViewed records the thread as viewed. Returns false if it was already
// in the set, in which case nothing is persisted.
func (s *SeenSet) MarkViewed(threadID string) bool {
	if threadID == "" {
		return false
	}

	s.mu.Lock()
	if _, ok := s.ids[threadID]; ok {
		s.mu.Unlock()
		return false
	}
	s.ids[threadID] = struct{}{}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
	return true
}

// HasViewed reports membership.
func (s *SeenSet) HasViewed(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[threadID]
	return ok
}

// Forget drops a single id, used when a thread is deleted mid-session.
func (s *SeenSet) Forget(threadID string) {
	s.mu.Lock()
	if _, ok := s.ids[threadID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, threadID)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

// Clear empties the set and its storage key. Safe to call repeatedly.
func (s *SeenSet) Clear() {
	s.mu.Lock()
	n := len(s.ids)
	if n > 0 {
		s.ids = make(map[string]struct{})
	}
	s.mu.Unlock()

	if err := s.kv.Delete(localstore.ScopeSession, localstore.KeyViewedThreads); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear persisted viewed threads")
	}
}

// Len returns the number of viewed threads.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

func (s *SeenSet) snapshotLocked() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *SeenSet) persist(ids []string) {
	if err := s.kv.Set(localstore.ScopeSession, localstore.KeyViewedThreads, ids); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist viewed threads")
	}
}
