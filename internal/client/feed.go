package client

import (
	"context"
	"errors"

	"github.com/verdinapp/verdin/internal/models"
)

// ErrSuperseded marks a load whose result was discarded because a newer
// request for the same surface started while it was in flight. Callers
// treat it as "do nothing", not as a failure.
var ErrSuperseded = errors.New("request superseded by a newer one")

// LoadFeed fetches one page of the thread feed into the thread store.
// Switch-to-latest: if another LoadFeed begins before this one's response
// lands, the response is discarded so stale results never overwrite
// fresher ones.
func (c *Core) LoadFeed(ctx context.Context, page, size int) (models.Page[models.Thread], error) {
	token := c.feedLatest.Begin()

	resp, err := c.API.FetchThreads(ctx, page, size)
	if err != nil {
		c.expireOnAuthError(err)
		return models.Page[models.Thread]{}, err
	}
	if !c.feedLatest.Current(token) {
		c.logger.Debug().Int("page", page).Msg("discarding superseded feed page")
		return models.Page[models.Thread]{}, ErrSuperseded
	}

	c.Threads.Load(resp.Content)
	return resp, nil
}

// SearchUsers runs the autocomplete query into the user store, with the
// same switch-to-latest contract as LoadFeed. Recording the query in the
// search history is a separate, explicit step (RecordSearch) because
// autocomplete keystrokes are not searches the user asked to remember.
func (c *Core) SearchUsers(ctx context.Context, query string, page, size int) (models.Page[models.User], error) {
	token := c.searchLatest.Begin()

	resp, err := c.API.SearchUsers(ctx, query, page, size)
	if err != nil {
		c.expireOnAuthError(err)
		return models.Page[models.User]{}, err
	}
	if !c.searchLatest.Current(token) {
		c.logger.Debug().Str("query", query).Msg("discarding superseded search result")
		return models.Page[models.User]{}, ErrSuperseded
	}

	c.Users.Load(resp.Content)
	return resp, nil
}

// RecordSearch remembers a submitted content search.
func (c *Core) RecordSearch(query string) {
	c.History.AddQuery(query)
}

// RecordUserVisit remembers a jump to a profile from search.
func (c *Core) RecordUserVisit(username string) {
	c.History.AddUser(username)
}

// LoadThread fetches one thread into the store.
func (c *Core) LoadThread(ctx context.Context, id string) (models.Thread, error) {
	th, err := c.API.FetchThread(ctx, id)
	if err != nil {
		c.expireOnAuthError(err)
		return models.Thread{}, err
	}
	c.Threads.Load([]models.Thread{th})
	return th, nil
}

// LoadUser fetches one profile into the store.
func (c *Core) LoadUser(ctx context.Context, username string) (models.User, error) {
	u, err := c.API.FetchUser(ctx, username)
	if err != nil {
		c.expireOnAuthError(err)
		return models.User{}, err
	}
	c.Users.Load([]models.User{u})
	return u, nil
}

// LoadCategories fetches the category list into the store.
func (c *Core) LoadCategories(ctx context.Context) error {
	cats, err := c.API.FetchCategories(ctx)
	if err != nil {
		c.expireOnAuthError(err)
		return err
	}
	c.Categories.Load(cats)
	return nil
}

// LoadComments fetches one page of a thread's replies. Comments are not
// normalized into a store; the page goes straight to the caller, and the
// thread's counter moves only through bus events.
func (c *Core) LoadComments(ctx context.Context, threadID string, page, size int) (models.Page[models.Comment], error) {
	resp, err := c.API.FetchComments(ctx, threadID, page, size)
	if err != nil {
		c.expireOnAuthError(err)
		return models.Page[models.Comment]{}, err
	}
	return resp, nil
}

// RefreshUnread re-fetches the authoritative unread summary, the fallback
// path while the push channel is down.
func (c *Core) RefreshUnread(ctx context.Context) error {
	unread, err := c.API.FetchUnread(ctx)
	if err != nil {
		c.expireOnAuthError(err)
		return err
	}
	c.Notifications.ApplyFetch(unread)
	return nil
}
