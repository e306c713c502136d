// Package realtime consumes the per-session push topic. The only contract
// it honors on delivery is handing the decoded notification to its handler;
// everything else (unread flags, recent lists) belongs to the stores.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
	"github.com/verdinapp/verdin/internal/models"
)

// DefaultReconnectWait is the fixed delay between reconnect attempts. The
// channel never escalates a dropped connection into a fatal error; while it
// is down, notifications only refresh on explicit fetch.
const DefaultReconnectWait = 2 * time.Second

// Handler receives every decoded push payload.
type Handler func(models.Notification)

// Channel is the push-channel consumer. Connect and Disconnect bracket a
// session; both are safe to call when already in the target state.
type Channel struct {
	url           string
	subjectPrefix string
	reconnectWait time.Duration
	handler       Handler
	logger        zerolog.Logger

	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithReconnectWait overrides the fixed reconnect delay.
func WithReconnectWait(d time.Duration) ChannelOption {
	return func(c *Channel) {
		if d > 0 {
			c.reconnectWait = d
		}
	}
}

// NewChannel creates a channel consumer. handler must not be nil.
func NewChannel(url, subjectPrefix string, handler Handler, opts ...ChannelOption) *Channel {
	c := &Channel{
		url:           url,
		subjectPrefix: subjectPrefix,
		reconnectWait: DefaultReconnectWait,
		handler:       handler,
		logger:        logging.Component("realtime"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subject returns the per-session topic for a session id.
func (c *Channel) Subject(sessionID string) string {
	return c.subjectPrefix + ".notifications." + sessionID
}

// Connect subscribes to the session's topic. A failure is returned so the
// caller can log it, but by contract the caller degrades silently rather
// than treating it as fatal.
func (c *Channel) Connect(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := nats.Connect(c.url,
		nats.Name("verdin-client"),
		nats.ReconnectWait(c.reconnectWait),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.logger.Warn().Err(err).Msg("push channel disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info().Str("url", nc.ConnectedUrl()).Msg("push channel reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect push channel: %w", err)
	}

	subject := c.Subject(sessionID)
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var notif models.Notification
		if err := json.Unmarshal(msg.Data, &notif); err != nil {
			c.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping undecodable push payload")
			return
		}
		c.handler(notif)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.conn = conn
	c.sub = sub
	c.logger.Info().Str("subject", subject).Msg("push channel connected")
	return nil
}

// Disconnect unsubscribes and closes the connection. Calling it while
// already disconnected is a no-op. It runs before the stores are cleared on
// teardown so an in-flight push cannot repopulate a wiped store.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sub != nil {
		_ = c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.logger.Info().Msg("push channel closed")
	}
}

// Connected reports whether the channel currently holds a live connection.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}
