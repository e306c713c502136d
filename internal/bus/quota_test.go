package bus

import (
	"testing"

	"github.com/verdinapp/verdin/internal/models"
)

func TestQuota_SpendAndRefundClampAtCallTime(t *testing.T) {
	q := NewQuota(2)

	q.Spend()
	q.Spend()
	q.Spend() // already at zero, clamped
	if got := q.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
	if !q.Exhausted() {
		t.Error("Exhausted() should be true at zero")
	}

	q.Refund()
	q.Refund()
	q.Refund() // already at the limit, clamped
	if got := q.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
}

func TestQuota_Sync(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		remaining     int
		wantLimit     int
		wantRemaining int
	}{
		{name: "adopts server numbers", limit: 100, remaining: 40, wantLimit: 100, wantRemaining: 40},
		{name: "remaining clamped to limit", limit: 10, remaining: 50, wantLimit: 10, wantRemaining: 10},
		{name: "negative remaining clamped to zero", limit: 10, remaining: -3, wantLimit: 10, wantRemaining: 0},
		{name: "non-positive limit keeps old limit", limit: 0, remaining: 5, wantLimit: 50, wantRemaining: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuota(50)
			q.Sync(tt.limit, tt.remaining)
			if q.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", q.Limit(), tt.wantLimit)
			}
			if q.Remaining() != tt.wantRemaining {
				t.Errorf("Remaining() = %d, want %d", q.Remaining(), tt.wantRemaining)
			}
		})
	}
}

func TestQuota_ReactsToBusEvents(t *testing.T) {
	b := New()
	q := NewQuota(5)
	if err := b.Subscribe("quota", q.Handle); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	b.Publish(models.Interaction{Type: models.InteractionLikeToggled, ThreadID: "t1", Liked: true})
	b.Publish(models.Interaction{Type: models.InteractionCommentAdded, ThreadID: "t1"})
	if got := q.Remaining(); got != 3 {
		t.Errorf("Remaining() = %d, want 3", got)
	}

	// Untoggling the like refunds it.
	b.Publish(models.Interaction{Type: models.InteractionLikeToggled, ThreadID: "t1", Liked: false})
	if got := q.Remaining(); got != 4 {
		t.Errorf("Remaining() = %d, want 4", got)
	}

	// Deleting a comment does not refund.
	b.Publish(models.Interaction{Type: models.InteractionCommentDeleted, ThreadID: "t1"})
	if got := q.Remaining(); got != 4 {
		t.Errorf("Remaining() = %d, want 4", got)
	}

	// Save toggles are free.
	b.Publish(models.Interaction{Type: models.InteractionSaveToggled, ThreadID: "t1", Saved: true})
	if got := q.Remaining(); got != 4 {
		t.Errorf("Remaining() = %d, want 4", got)
	}
}
