package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/verdinapp/verdin/internal/models"
	"github.com/verdinapp/verdin/internal/store"
)

func notifState(ids ...string) store.NotificationState {
	state := store.NotificationState{HasUnread: len(ids) > 0}
	for _, id := range ids {
		state.Recent = append(state.Recent, models.Notification{
			ID:      id,
			Type:    models.NotificationTypeLike,
			Actor:   models.UserRef{Username: "mara"},
			Message: "liked " + id,
		})
	}
	return state
}

func TestNotificationPrinter_PrintsEachOnce(t *testing.T) {
	var out bytes.Buffer
	print := notificationPrinter(&out)

	print(notifState("n1"))
	print(notifState("n2", "n1"))
	print(notifState("n2", "n1"))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "liked n1") || !strings.Contains(lines[1], "liked n2") {
		t.Errorf("unexpected order:\n%s", out.String())
	}
}

func TestNotificationPrinter_DedupSetStaysBounded(t *testing.T) {
	var out bytes.Buffer
	print := notificationPrinter(&out)

	// Roll many ids through a recent list capped at three; the printer
	// only ever remembers what is still in the list.
	window := []string{}
	for i := 0; i < 50; i++ {
		window = append([]string{fmt.Sprintf("n%d", i)}, window...)
		if len(window) > 3 {
			window = window[:3]
		}
		print(notifState(window...))
	}

	lines := strings.Count(out.String(), "\n")
	if lines != 50 {
		t.Errorf("printed %d lines, want 50 (each id exactly once)", lines)
	}

	// An id that left the window is forgotten: re-adding it prints again.
	out.Reset()
	print(notifState("n0", window[0]))
	if got := strings.Count(out.String(), "liked n0"); got != 1 {
		t.Errorf("evicted id reprinted %d times, want 1 (dedup set was pruned)", got)
	}
}

func TestNotificationPrinter_EmptyStateIsQuiet(t *testing.T) {
	var out bytes.Buffer
	print := notificationPrinter(&out)

	print(store.NotificationState{})
	if out.Len() != 0 {
		t.Errorf("unexpected output: %q", out.String())
	}
}
