package store

import (
	"github.com/verdinapp/verdin/internal/models"
)

// Threads caches threads by id. IsLiked and IsSaved survive server
// refreshes; every counter takes the refreshed value.
type Threads struct {
	*Store[string, models.Thread]
}

// NewThreads creates the thread store.
func NewThreads() *Threads {
	return &Threads{
		Store: New("threads",
			func(t models.Thread) string { return t.ID },
			mergeThread,
		),
	}
}

func mergeThread(existing, incoming models.Thread) models.Thread {
	merged := incoming
	merged.IsLiked = existing.IsLiked
	merged.IsSaved = existing.IsSaved
	return merged
}

// SetLiked writes the like flag and the likes counter in one step so no
// reader can observe the flag without its counter.
func (t *Threads) SetLiked(id string, liked bool, likes int) bool {
	return t.Mutate(id, func(th models.Thread) models.Thread {
		th.IsLiked = liked
		th.Stats.Likes = likes
		return th
	})
}

// SetSaved writes the save flag and the saves counter in one step.
func (t *Threads) SetSaved(id string, saved bool, saves int) bool {
	return t.Mutate(id, func(th models.Thread) models.Thread {
		th.IsSaved = saved
		th.Stats.Saves = saves
		return th
	})
}

// HandleInteraction is the thread store's bus subscription: comment events
// adjust the target thread's comment counter. Like and save toggles are
// already applied by the optimistic mutation path, so they are ignored here
// (the quota subscriber reacts to them independently).
func (t *Threads) HandleInteraction(ev models.Interaction) {
	switch ev.Type {
	case models.InteractionCommentAdded:
		t.Mutate(ev.ThreadID, func(th models.Thread) models.Thread {
			th.Stats.Comments++
			return th
		})
	case models.InteractionCommentDeleted:
		t.Mutate(ev.ThreadID, func(th models.Thread) models.Thread {
			if th.Stats.Comments > 0 {
				th.Stats.Comments--
			}
			return th
		})
	}
}
