package client

import (
	"context"
	"fmt"

	"github.com/verdinapp/verdin/internal/models"
)

// ActionError is the transient, recoverable failure surfaced when a
// mutation endpoint rejects an optimistic write. The store has already been
// rolled back by the time the caller sees it.
type ActionError struct {
	Op  string
	Err error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed, change was undone: %v", e.Op, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ToggleLike optimistically flips a thread's like flag, tells the backend,
// and rolls back on failure. The rollback re-fetches the cell by key: the
// thread may have been removed or the store cleared while the request was
// in flight, in which case there is nothing to roll back into.
//
// There is no mutation versioning: a rollback landing after an unrelated
// refresh overwrites that refresh's counter with the pre-toggle snapshot.
// Last writer wins within a cell, by contract.
func (c *Core) ToggleLike(ctx context.Context, threadID string, liked bool) error {
	cell, ok := c.Threads.Get(threadID)
	if !ok {
		c.logger.Debug().Str("thread_id", threadID).Msg("like toggle on unknown thread, ignoring")
		return nil
	}

	prev := cell.Get()
	if prev.IsLiked == liked {
		return nil
	}

	likes := prev.Stats.Likes
	if liked {
		likes++
	} else if likes > 0 {
		likes--
	}
	c.Threads.SetLiked(threadID, liked, likes)

	if err := c.API.SetThreadLiked(ctx, threadID, liked); err != nil {
		c.Threads.SetLiked(threadID, prev.IsLiked, prev.Stats.Likes)
		c.expireOnAuthError(err)
		return &ActionError{Op: "like toggle", Err: err}
	}

	c.Bus.Publish(models.Interaction{
		Type:     models.InteractionLikeToggled,
		ThreadID: threadID,
		Liked:    liked,
	})
	return nil
}

// ToggleSave optimistically flips a thread's save flag with the same
// rollback contract as ToggleLike. Saves do not touch the quota.
func (c *Core) ToggleSave(ctx context.Context, threadID string, saved bool) error {
	cell, ok := c.Threads.Get(threadID)
	if !ok {
		c.logger.Debug().Str("thread_id", threadID).Msg("save toggle on unknown thread, ignoring")
		return nil
	}

	prev := cell.Get()
	if prev.IsSaved == saved {
		return nil
	}

	saves := prev.Stats.Saves
	if saved {
		saves++
	} else if saves > 0 {
		saves--
	}
	c.Threads.SetSaved(threadID, saved, saves)

	if err := c.API.SetThreadSaved(ctx, threadID, saved); err != nil {
		c.Threads.SetSaved(threadID, prev.IsSaved, prev.Stats.Saves)
		c.expireOnAuthError(err)
		return &ActionError{Op: "save toggle", Err: err}
	}

	c.Bus.Publish(models.Interaction{
		Type:     models.InteractionSaveToggled,
		ThreadID: threadID,
		Saved:    saved,
	})
	return nil
}

// ToggleFollowUser optimistically follows or unfollows a profile.
func (c *Core) ToggleFollowUser(ctx context.Context, username string, followed bool) error {
	cell, ok := c.Users.Get(username)
	if !ok {
		c.logger.Debug().Str("username", username).Msg("follow toggle on unknown user, ignoring")
		return nil
	}

	prev := cell.Get()
	if prev.IsFollowing == followed {
		return nil
	}

	c.Users.SetFollowing(username, followed)

	if err := c.API.SetUserFollowed(ctx, username, followed); err != nil {
		c.Users.Mutate(username, func(u models.User) models.User {
			u.IsFollowing = prev.IsFollowing
			u.FollowerCount = prev.FollowerCount
			return u
		})
		c.expireOnAuthError(err)
		return &ActionError{Op: "follow toggle", Err: err}
	}
	return nil
}

// ToggleFollowCategory optimistically follows or unfollows a category.
func (c *Core) ToggleFollowCategory(ctx context.Context, id string, followed bool) error {
	cell, ok := c.Categories.Get(id)
	if !ok {
		c.logger.Debug().Str("category_id", id).Msg("follow toggle on unknown category, ignoring")
		return nil
	}

	prev := cell.Get()
	if prev.IsFollowedByCurrentUser == followed {
		return nil
	}

	c.Categories.SetFollowed(id, followed)

	if err := c.API.SetCategoryFollowed(ctx, id, followed); err != nil {
		c.Categories.Mutate(id, func(cat models.Category) models.Category {
			cat.IsFollowedByCurrentUser = prev.IsFollowedByCurrentUser
			cat.FollowerCount = prev.FollowerCount
			return cat
		})
		c.expireOnAuthError(err)
		return &ActionError{Op: "category follow toggle", Err: err}
	}
	return nil
}

// PostComment creates a reply. It is not optimistic: the comment counter
// moves only when the bus event fans out after the backend accepted the
// comment, so a rejection leaves nothing to undo.
func (c *Core) PostComment(ctx context.Context, threadID, text string) (models.Comment, error) {
	comment, err := c.API.AddComment(ctx, threadID, text)
	if err != nil {
		c.expireOnAuthError(err)
		return models.Comment{}, &ActionError{Op: "comment", Err: err}
	}

	c.Bus.Publish(models.Interaction{
		Type:     models.InteractionCommentAdded,
		ThreadID: threadID,
	})
	return comment, nil
}

// DeleteComment removes a reply and lets the bus adjust the counter.
func (c *Core) DeleteComment(ctx context.Context, threadID, commentID string) error {
	if err := c.API.DeleteComment(ctx, threadID, commentID); err != nil {
		c.expireOnAuthError(err)
		return &ActionError{Op: "comment delete", Err: err}
	}

	c.Bus.Publish(models.Interaction{
		Type:     models.InteractionCommentDeleted,
		ThreadID: threadID,
	})
	return nil
}

// DeleteThread removes a thread everywhere: backend first, then the store,
// whose removal hooks notify any held id-lists.
func (c *Core) DeleteThread(ctx context.Context, threadID string) error {
	if err := c.API.DeleteThread(ctx, threadID); err != nil {
		c.expireOnAuthError(err)
		return &ActionError{Op: "thread delete", Err: err}
	}
	c.Threads.Remove(threadID)
	return nil
}

// MarkAllNotificationsRead optimistically clears the unread flag and rolls
// it back if the backend rejects the call.
func (c *Core) MarkAllNotificationsRead(ctx context.Context) error {
	prev := c.Notifications.HasUnread()
	if !prev {
		return nil
	}

	c.Notifications.SetUnread(false)

	if err := c.API.MarkNotificationsRead(ctx); err != nil {
		c.Notifications.SetUnread(prev)
		c.expireOnAuthError(err)
		return &ActionError{Op: "mark notifications read", Err: err}
	}
	return nil
}

// MarkThreadViewed records a view locally and reports it to the backend at
// most once per session. The report is fire-and-forget: a failure keeps the
// local marker so the client does not spam the endpoint.
func (c *Core) MarkThreadViewed(ctx context.Context, threadID string) {
	if !c.Seen.MarkViewed(threadID) {
		return
	}
	c.Threads.Mutate(threadID, func(th models.Thread) models.Thread {
		th.Stats.Views++
		return th
	})
	if err := c.API.ReportView(ctx, threadID); err != nil {
		c.logger.Debug().Err(err).Str("thread_id", threadID).Msg("view report failed")
		c.expireOnAuthError(err)
	}
}
