package store

import (
	"github.com/verdinapp/verdin/internal/models"
)

// Users caches profiles by username. IsFollowing survives server refreshes.
type Users struct {
	*Store[string, models.User]
}

// NewUsers creates the user store.
func NewUsers() *Users {
	return &Users{
		Store: New("users",
			func(u models.User) string { return u.Username },
			mergeUser,
		),
	}
}

func mergeUser(existing, incoming models.User) models.User {
	merged := incoming
	merged.IsFollowing = existing.IsFollowing
	return merged
}

// SetFollowing flips the follow flag and adjusts the follower counter
// relative to the latest synced count. A repeated write of the same flag
// value leaves the counter alone, so toggling always returns to baseline.
func (u *Users) SetFollowing(username string, following bool) bool {
	return u.Mutate(username, func(usr models.User) models.User {
		if usr.IsFollowing == following {
			return usr
		}
		usr.IsFollowing = following
		if following {
			usr.FollowerCount++
		} else if usr.FollowerCount > 0 {
			usr.FollowerCount--
		}
		return usr
	})
}

// AdjustFollowing shifts the profile's own following counter, used when the
// current user follows or unfollows someone from this profile's page.
func (u *Users) AdjustFollowing(username string, delta int) bool {
	return u.Mutate(username, func(usr models.User) models.User {
		usr.FollowingCount += delta
		if usr.FollowingCount < 0 {
			usr.FollowingCount = 0
		}
		return usr
	})
}
