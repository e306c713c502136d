package store

import (
	"github.com/verdinapp/verdin/internal/models"
)

// maxRecentNotifications bounds the in-memory recent list fed by push
// arrivals. It is a convenience buffer, not the notification inbox.
const maxRecentNotifications = 20

// NotificationState is the client's summary view of notifications: a single
// "has unread" flag plus a short recent list. It is not a full inbox.
type NotificationState struct {
	HasUnread bool
	Recent    []models.Notification
}

// Notifications tracks the unread flag. The flag is fed from two sources:
// an authoritative fetch at load time, and push arrivals afterwards. A push
// always wins over a locally applied "read" state, whatever the ordering.
type Notifications struct {
	cell *Cell[NotificationState]
}

// NewNotifications creates the notification summary store.
func NewNotifications() *Notifications {
	return &Notifications{cell: NewCell(NotificationState{})}
}

// Cell returns the reactive handle for UI reads and subscriptions.
func (n *Notifications) Cell() *Cell[NotificationState] {
	return n.cell
}

// HasUnread reports the current unread flag.
func (n *Notifications) HasUnread() bool {
	return n.cell.Get().HasUnread
}

// ApplyFetch records the authoritative answer of an explicit fetch.
func (n *Notifications) ApplyFetch(hasUnread bool) {
	n.cell.update(func(s NotificationState) NotificationState {
		s.HasUnread = hasUnread
		return s
	})
}

// SetUnread writes the unread flag directly. The optimistic mark-all-read
// path uses it both for the optimistic write and the rollback.
func (n *Notifications) SetUnread(unread bool) {
	n.cell.update(func(s NotificationState) NotificationState {
		s.HasUnread = unread
		return s
	})
}

// PushArrived handles a real-time payload: the unread flag goes true
// unconditionally and the payload is prepended to the recent list. No
// refetch is required.
func (n *Notifications) PushArrived(notif models.Notification) {
	n.cell.update(func(s NotificationState) NotificationState {
		s.HasUnread = true
		recent := make([]models.Notification, 0, len(s.Recent)+1)
		recent = append(recent, notif)
		recent = append(recent, s.Recent...)
		if len(recent) > maxRecentNotifications {
			recent = recent[:maxRecentNotifications]
		}
		s.Recent = recent
		return s
	})
}

// Recent returns a copy of the recent push payloads, newest first.
func (n *Notifications) Recent() []models.Notification {
	state := n.cell.Get()
	out := make([]models.Notification, len(state.Recent))
	copy(out, state.Recent)
	return out
}

// Clear resets the summary to its zero state.
func (n *Notifications) Clear() {
	n.cell.set(NotificationState{})
}
