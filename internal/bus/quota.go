package bus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
	"github.com/verdinapp/verdin/internal/models"
)

// DefaultQuotaLimit is the daily interaction allowance used when the config
// does not say otherwise.
const DefaultQuotaLimit = 50

// Quota mirrors the server's daily interaction allowance. Likes and
// comments spend from it; untoggling a like refunds. Remaining is clamped
// to [0, limit] at call time, never after the fact.
type Quota struct {
	mu        sync.Mutex
	limit     int
	remaining int
	logger    zerolog.Logger
}

// NewQuota creates a quota with the full allowance remaining.
func NewQuota(limit int) *Quota {
	if limit <= 0 {
		limit = DefaultQuotaLimit
	}
	return &Quota{
		limit:     limit,
		remaining: limit,
		logger:    logging.Component("quota"),
	}
}

// Spend consumes one unit, stopping at zero.
func (q *Quota) Spend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.remaining > 0 {
		q.remaining--
	}
}

// Refund returns one unit, stopping at the limit.
func (q *Quota) Refund() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.remaining < q.limit {
		q.remaining++
	}
}

// Sync adopts the server's authoritative numbers.
func (q *Quota) Sync(limit, remaining int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit > 0 {
		q.limit = limit
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > q.limit {
		remaining = q.limit
	}
	q.remaining = remaining
}

// Remaining returns the units left today.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remaining
}

// Limit returns the configured daily allowance.
func (q *Quota) Limit() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit
}

// Exhausted reports whether the allowance is used up.
func (q *Quota) Exhausted() bool {
	return q.Remaining() == 0
}

// Handle is the quota's bus subscription. Setting a like spends, clearing
// one refunds, a new comment spends. Comment deletion does not refund: the
// cost of posting is not returned by cleaning up afterwards.
func (q *Quota) Handle(ev models.Interaction) {
	switch ev.Type {
	case models.InteractionLikeToggled:
		if ev.Liked {
			q.Spend()
		} else {
			q.Refund()
		}
	case models.InteractionCommentAdded:
		q.Spend()
	}
}
