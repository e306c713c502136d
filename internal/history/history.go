// Package history keeps the bounded recent-search list: newest first,
// deduplicated, capped, persisted to the durable local store so it survives
// a restart.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/localstore"
	"github.com/verdinapp/verdin/internal/logging"
)

// DefaultCapacity is how many recent searches are kept.
const DefaultCapacity = 7

// Kind discriminates the two search history variants.
type Kind string

const (
	// KindQuery is a free-text content search.
	KindQuery Kind = "query"

	// KindUser is a jump to a user profile.
	KindUser Kind = "user"
)

// Item is one remembered search. IDs are monotonic within the history and
// exist only so an entry can be removed from the UI.
type Item struct {
	ID       int64     `json:"id"`
	Kind     Kind      `json:"kind"`
	Query    string    `json:"query,omitempty"`
	Username string    `json:"username,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// dedupKey is what makes two items "the same search": case-insensitive
// text for queries, exact username for user jumps.
func (i Item) dedupKey() string {
	if i.Kind == KindUser {
		return "user:" + i.Username
	}
	return "query:" + strings.ToLower(i.Query)
}

// History is the bounded recent-search list. All mutations write through to
// the durable scope of the local store; persistence failures are logged and
// the in-memory list stays usable.
type History struct {
	mu       sync.Mutex
	kv       localstore.KV
	capacity int
	items    []Item
	nextID   int64
	logger   zerolog.Logger
}

// New creates a history backed by kv, reloading whatever a previous run
// persisted. capacity <= 0 selects DefaultCapacity.
func New(kv localstore.KV, capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &History{
		kv:       kv,
		capacity: capacity,
		nextID:   1,
		logger:   logging.Component("history"),
	}

	var stored []Item
	found, err := kv.Get(localstore.ScopeDurable, localstore.KeySearchHistory, &stored)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to reload search history")
		return h
	}
	if found {
		if len(stored) > capacity {
			stored = stored[:capacity]
		}
		h.items = stored
		for _, item := range stored {
			if item.ID >= h.nextID {
				h.nextID = item.ID + 1
			}
		}
	}
	return h
}

// AddQuery remembers a content search. Blank or whitespace-only text is
// rejected. A duplicate differing only in letter case moves to the front
// keeping the newest casing. Returns the stored item and whether anything
// was added.
func (h *History) AddQuery(text string) (Item, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Item{}, false
	}
	return h.add(Item{Kind: KindQuery, Query: trimmed}), true
}

// AddUser remembers a jump to a user profile.
func (h *History) AddUser(username string) (Item, bool) {
	if strings.TrimSpace(username) == "" {
		return Item{}, false
	}
	return h.add(Item{Kind: KindUser, Username: username}), true
}

func (h *History) add(item Item) Item {
	h.mu.Lock()

	item.ID = h.nextID
	h.nextID++
	item.AddedAt = time.Now().UTC()

	// Drop any entry matching the same dedup key, insert at the front,
	// then cap. That order keeps a re-search from growing the list.
	key := item.dedupKey()
	kept := make([]Item, 0, len(h.items)+1)
	kept = append(kept, item)
	for _, existing := range h.items {
		if existing.dedupKey() != key {
			kept = append(kept, existing)
		}
	}
	if len(kept) > h.capacity {
		kept = kept[:h.capacity]
	}
	h.items = kept
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	h.persist(snapshot)
	return item
}

// Remove deletes the entry with the given id. Removing an unknown id is a
// no-op.
func (h *History) Remove(id int64) bool {
	h.mu.Lock()
	removed := false
	kept := h.items[:0]
	for _, item := range h.items {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	h.items = kept
	snapshot := h.snapshotLocked()
	h.mu.Unlock()

	if !removed {
		h.logger.Debug().Int64("id", id).Msg("remove on absent history entry, ignoring")
		return false
	}
	h.persist(snapshot)
	return true
}

// Clear empties the history and its storage key.
func (h *History) Clear() {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()

	if err := h.kv.Delete(localstore.ScopeDurable, localstore.KeySearchHistory); err != nil {
		h.logger.Warn().Err(err).Msg("failed to clear persisted search history")
	}
}

// Items returns a copy of the list, most recent first.
func (h *History) Items() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Len returns the number of remembered searches.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

func (h *History) snapshotLocked() []Item {
	out := make([]Item, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) persist(items []Item) {
	if err := h.kv.Set(localstore.ScopeDurable, localstore.KeySearchHistory, items); err != nil {
		h.logger.Warn().Err(err).Msg("failed to persist search history")
	}
}
