// Package client wires the Verdin client core together: entity stores,
// interaction bus, quota mirror, session lifecycle, real-time channel, and
// the bounded local caches.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/api"
	"github.com/verdinapp/verdin/internal/bus"
	"github.com/verdinapp/verdin/internal/config"
	"github.com/verdinapp/verdin/internal/history"
	"github.com/verdinapp/verdin/internal/localstore"
	"github.com/verdinapp/verdin/internal/logging"
	"github.com/verdinapp/verdin/internal/realtime"
	"github.com/verdinapp/verdin/internal/session"
	"github.com/verdinapp/verdin/internal/store"
	"github.com/verdinapp/verdin/internal/views"
)

// sessionBinder is the slice of the local store the core needs beyond KV.
// The SQLite store implements it; the in-memory test store does not need
// to.
type sessionBinder interface {
	BindSession(sessionID string) error
}

// Core owns every piece of client-side state. One Core exists per client
// session lifetime; its caches are wiped, not rebuilt, on logout.
type Core struct {
	API           *api.Client
	Threads       *store.Threads
	Users         *store.Users
	Categories    *store.Categories
	Notifications *store.Notifications
	Bus           *bus.Bus
	Quota         *bus.Quota
	History       *history.History
	Seen          *views.SeenSet
	Session       *session.Controller
	Channel       *realtime.Channel

	kv     localstore.KV
	logger zerolog.Logger

	mu    sync.Mutex
	token *session.Token

	feedLatest   api.Latest
	searchLatest api.Latest
}

// New builds a Core from configuration and a local store.
func New(cfg *config.Config, kv localstore.KV) (*Core, error) {
	c := &Core{
		Threads:       store.NewThreads(),
		Users:         store.NewUsers(),
		Categories:    store.NewCategories(),
		Notifications: store.NewNotifications(),
		Bus:           bus.New(),
		Quota:         bus.NewQuota(cfg.Quota.DailyLimit),
		History:       history.New(kv, cfg.History.Capacity),
		Seen:          views.New(kv),
		Session:       session.NewController(),
		kv:            kv,
		logger:        logging.Component("client"),
	}

	c.API = api.NewClient(cfg.API.BaseURL,
		api.WithTokenProvider(c.currentToken),
		api.WithTimeout(cfg.API.Timeout))
	c.Channel = realtime.NewChannel(cfg.Push.URL, cfg.Push.SubjectPrefix,
		c.Notifications.PushArrived,
		realtime.WithReconnectWait(cfg.Push.ReconnectWait))

	if err := c.Bus.Subscribe("thread-counters", c.Threads.HandleInteraction); err != nil {
		return nil, err
	}
	if err := c.Bus.Subscribe("quota", c.Quota.Handle); err != nil {
		return nil, err
	}

	// Removing a thread forgets its viewed marker so a recreated id counts
	// as fresh.
	c.Threads.OnRemove(c.Seen.Forget)

	// Teardown order matters: the channel goes first so an in-flight push
	// cannot repopulate a store after it was wiped, then the stores, then
	// the viewed cache.
	c.Session.OnTeardown(c.Channel.Disconnect)
	c.Session.OnTeardown(c.clearStores)
	c.Session.OnTeardown(c.Seen.Clear)

	return c, nil
}

func (c *Core) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return ""
	}
	return c.token.Raw
}

func (c *Core) clearStores() {
	c.Threads.Clear()
	c.Users.Clear()
	c.Categories.Clear()
	c.Notifications.Clear()

	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

// Login adopts a session token and brings the session up: durable caches
// are rebound, the notification summary and quota are synced, and the push
// channel is connected. A push-channel failure degrades silently.
func (c *Core) Login(ctx context.Context, rawToken string) error {
	tok, err := session.DecodeToken(rawToken)
	if err != nil {
		return err
	}
	if tok.Expired(time.Now()) {
		c.logger.Warn().Str("subject", tok.Subject).Msg("session token already expired")
		return session.ErrMalformedToken
	}

	c.Session.Set(session.StateAuthenticating)

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()

	logger := logging.WithSession(tok.SessionID)

	if binder, ok := c.kv.(sessionBinder); ok {
		if err := binder.BindSession(tok.SessionID); err != nil {
			logger.Warn().Err(err).Msg("failed to bind session storage")
		}
	}
	// The seen-set reflects whatever the bound session left behind.
	c.Seen.Reload()

	if unread, err := c.API.FetchUnread(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to fetch unread summary")
	} else {
		c.Notifications.ApplyFetch(unread)
	}

	if limit, remaining, err := c.API.FetchQuota(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to sync interaction quota")
	} else {
		c.Quota.Sync(limit, remaining)
	}

	if err := c.Channel.Connect(tok.SessionID); err != nil {
		// Degraded mode: notifications refresh only on explicit fetch.
		logger.Warn().Err(err).Msg("push channel unavailable")
	}

	c.Session.Set(session.StateAuthenticated)
	return nil
}

// Logout drives the session state machine down, which synchronously tears
// down the channel, the stores, and the viewed cache.
func (c *Core) Logout() {
	c.Session.Set(session.StateUnauthenticated)
}

// SessionExpired is called when the server rejects the token. Same
// teardown as an explicit logout.
func (c *Core) SessionExpired() {
	c.logger.Info().Msg("session rejected by server, tearing down")
	c.Session.Set(session.StateUnauthenticated)
}

// expireOnAuthError tears the session down when the backend rejected the
// token. Every request path routes its API errors through here, so a
// revoked session cannot keep serving cached state.
func (c *Core) expireOnAuthError(err error) {
	if err == nil || !errors.Is(err, api.ErrUnauthorized) {
		return
	}
	if c.Session.State() == session.StateUnauthenticated {
		return
	}
	c.SessionExpired()
}

// Close releases everything the core holds. The session goes down first so
// teardown still observes a live channel.
func (c *Core) Close() {
	c.Session.Set(session.StateUnauthenticated)
	c.Bus.Close()
}
