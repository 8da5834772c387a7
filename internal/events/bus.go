package events

import (
	"errors"
	"sync"

	eventbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// ErrBusClosed is returned by every operation after Close
var ErrBusClosed = errors.New("event bus is closed")

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	Publish(topic string, data interface{}) error
	Subscribe(topic string, handler interface{}) error
	SubscribeAsync(topic string, handler interface{}) error
	Unsubscribe(topic string, handler interface{}) error
	Close() error
}

// eventBus wraps asaskevich/EventBus with logging and a closed state
type eventBus struct {
	bus    eventbus.Bus
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewEventBus creates a new event bus instance
func NewEventBus(logger *zap.Logger) EventBus {
	return &eventBus{
		bus:    eventbus.New(),
		logger: logger,
	}
}

// Publish delivers data to every handler of topic. Synchronous handlers run
// before Publish returns.
func (eb *eventBus) Publish(topic string, data interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Publishing event", zap.String("topic", topic))
	eb.bus.Publish(topic, data)
	return nil
}

// Subscribe registers a handler that runs on the publisher's goroutine
func (eb *eventBus) Subscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Subscribing to topic", zap.String("topic", topic))
	return eb.bus.Subscribe(topic, handler)
}

// SubscribeAsync registers a handler that runs on its own goroutine; calls
// to the same handler are serialized.
func (eb *eventBus) SubscribeAsync(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Subscribing async handler to topic", zap.String("topic", topic))
	return eb.bus.SubscribeAsync(topic, handler, true)
}

// Unsubscribe removes handler from topic
func (eb *eventBus) Unsubscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	return eb.bus.Unsubscribe(topic, handler)
}

// Close rejects further use and waits for in-flight async handlers
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return nil
	}

	eb.logger.Info("Closing event bus")
	eb.closed = true
	eb.bus.WaitAsync()

	return nil
}
