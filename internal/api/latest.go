package api

import "sync/atomic"

// Latest implements switch-to-latest semantics for one logical query: a
// newer request supersedes any older, still-pending one, and the older
// result is discarded when it finally lands. Pair one Latest with each
// paginated list or autocomplete surface.
type Latest struct {
	seq atomic.Uint64
}

// Begin marks a new request and returns its token.
func (l *Latest) Begin() uint64 {
	return l.seq.Add(1)
}

// Current reports whether token still identifies the newest request. A
// completion callback checks this before applying its result.
func (l *Latest) Current(token uint64) bool {
	return l.seq.Load() == token
}
