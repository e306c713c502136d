// Package session tracks the client's authentication state and drives the
// teardown that wipes all client caches when the session ends.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
)

// State is the session's position in its lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Controller watches session state transitions. Entering
// StateUnauthenticated runs the registered teardown hooks synchronously, in
// registration order, exactly once per transition: re-observing the
// unauthenticated state does not re-trigger teardown.
type Controller struct {
	mu       sync.Mutex
	state    State
	teardown []func()
	logger   zerolog.Logger
}

// NewController creates a controller starting unauthenticated. The initial
// state is not a transition, so no teardown fires until a session has
// actually existed.
func NewController() *Controller {
	return &Controller{
		state:  StateUnauthenticated,
		logger: logging.Component("session"),
	}
}

// OnTeardown registers a hook. Hooks run in registration order; the caller
// is responsible for registering them in dependency order (the realtime
// disconnect must come before the store wipes, or an in-flight push could
// repopulate a store moments after it was cleared).
func (c *Controller) OnTeardown(hook func()) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown = append(c.teardown, hook)
}

// Set records a state transition. The teardown edge is detected under the
// lock; hooks run after release so they may read the controller.
func (c *Controller) Set(next State) {
	c.mu.Lock()
	prev := c.state
	c.state = next

	var hooks []func()
	if next == StateUnauthenticated && prev != StateUnauthenticated {
		hooks = make([]func(), len(c.teardown))
		copy(hooks, c.teardown)
	}
	c.mu.Unlock()

	if prev != next {
		c.logger.Info().
			Str("from", string(prev)).
			Str("to", string(next)).
			Msg("session state changed")
	}

	for _, hook := range hooks {
		hook()
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Authenticated reports whether a session is currently active.
func (c *Controller) Authenticated() bool {
	return c.State() == StateAuthenticated
}
