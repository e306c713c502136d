// Package localstore is the client's local persistence, the stand-in for
// browser storage: JSON values under string keys, split into a durable
// scope (search history, preferences) and a session scope (viewed-thread
// ids) that is dropped when a different session binds the store.
package localstore

import "errors"

// Scope selects a key namespace with its own lifetime.
type Scope string

const (
	// ScopeDurable survives across sessions.
	ScopeDurable Scope = "durable"

	// ScopeSession survives a reload of the same session but is purged
	// when another session binds the store.
	ScopeSession Scope = "session"
)

// Well-known keys.
const (
	KeySearchHistory = "search_history"
	KeyViewedThreads = "viewed_threads"
	KeyTheme         = "theme"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("localstore: closed")

// KV is the storage contract the caches persist through. Get reports
// whether the key existed; decoding happens into v.
type KV interface {
	Get(scope Scope, key string, v any) (bool, error)
	Set(scope Scope, key string, v any) error
	Delete(scope Scope, key string) error
}
