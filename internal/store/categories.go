package store

import (
	"sort"

	"github.com/verdinapp/verdin/internal/models"
)

// Categories caches topic categories by id. IsFollowedByCurrentUser
// survives server refreshes.
type Categories struct {
	*Store[string, models.Category]
}

// NewCategories creates the category store.
func NewCategories() *Categories {
	return &Categories{
		Store: New("categories",
			func(c models.Category) string { return c.ID },
			mergeCategory,
		),
	}
}

func mergeCategory(existing, incoming models.Category) models.Category {
	merged := incoming
	merged.IsFollowedByCurrentUser = existing.IsFollowedByCurrentUser
	return merged
}

// SetFollowed flips the follow flag and adjusts the follower counter
// relative to the latest synced count, not a load-time snapshot, so
// repeated toggling returns to the true baseline.
func (c *Categories) SetFollowed(id string, followed bool) bool {
	return c.Mutate(id, func(cat models.Category) models.Category {
		if cat.IsFollowedByCurrentUser == followed {
			return cat
		}
		cat.IsFollowedByCurrentUser = followed
		if followed {
			cat.FollowerCount++
		} else if cat.FollowerCount > 0 {
			cat.FollowerCount--
		}
		return cat
	})
}

// Suggested returns the cached categories the current user does not follow,
// most followed first. It is a derived view: callers pair it with the cell
// versions if they want to recompute lazily.
func (c *Categories) Suggested(limit int) []models.Category {
	var out []models.Category
	for _, key := range c.Keys() {
		cell, ok := c.Get(key)
		if !ok {
			continue
		}
		cat := cell.Get()
		if !cat.IsFollowedByCurrentUser {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FollowerCount != out[j].FollowerCount {
			return out[i].FollowerCount > out[j].FollowerCount
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
