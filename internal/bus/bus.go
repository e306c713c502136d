// Package bus provides the interaction bus: a synchronous publish/subscribe
// channel fanning out user-triggered interaction events (comment posted,
// like toggled, save toggled) to independently reacting subsystems.
package bus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/verdinapp/verdin/internal/logging"
	"github.com/verdinapp/verdin/internal/models"
)

// Handler is a callback invoked for every published interaction.
type Handler func(models.Interaction)

// subscription represents an active bus subscription.
type subscription struct {
	id      string
	handler Handler
}

// Bus fans interactions out to every current subscriber synchronously.
// There is no buffering and no replay: a late subscriber misses past
// events.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	logger        zerolog.Logger
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		subscriptions: make(map[string]*subscription),
		logger:        logging.Component("bus"),
	}
}

// Publish delivers ev to every subscriber. Handlers are invoked outside the
// lock, in subscription-id-independent order, before Publish returns.
func (b *Bus) Publish(ev models.Interaction) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	b.logger.Debug().
		Str("type", string(ev.Type)).
		Str("thread_id", ev.ThreadID).
		Int("subscribers", len(handlers)).
		Msg("publishing interaction")

	for _, handler := range handlers {
		handler(ev)
	}
}

// Subscribe registers a handler under an id for later unsubscription.
func (b *Bus) Subscribe(id string, handler Handler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	b.subscriptions[id] = &subscription{id: id, handler: handler}
	return nil
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}

	delete(b.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// Close removes all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make(map[string]*subscription)
}

// Errors for bus operations.
var (
	ErrInvalidSubscriptionID = &BusError{Message: "subscription ID is required"}
	ErrNilHandler            = &BusError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &BusError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &BusError{Message: "subscription not found"}
)

// BusError represents an error from bus operations.
type BusError struct {
	Message string
}

func (e *BusError) Error() string {
	return e.Message
}
