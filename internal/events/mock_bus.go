package events

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

// MockEventBus is an in-memory EventBus for tests. Handlers always run
// synchronously on the publishing goroutine.
type MockEventBus struct {
	mutex           sync.RWMutex
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	publishErr      error
	errors          []error
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	if reflect.TypeOf(handler) == nil || reflect.TypeOf(handler).Kind() != reflect.Func {
		return fmt.Errorf("%T is not a function", handler)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// SubscribeAsync implements the EventBus interface; delivery stays synchronous
func (m *MockEventBus) SubscribeAsync(topic string, handler interface{}) error {
	return m.Subscribe(topic, handler)
}

// Unsubscribe implements the EventBus interface
func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	target := reflect.ValueOf(handler).Pointer()
	handlers := m.subscriptions[topic]
	kept := handlers[:0]
	for _, h := range handlers {
		if reflect.ValueOf(h).Pointer() != target {
			kept = append(kept, h)
		}
	}
	m.subscriptions[topic] = kept

	return nil
}

// Publish records event and invokes the topic handlers
func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mutex.Lock()
	if m.publishErr != nil {
		err := m.publishErr
		m.mutex.Unlock()
		return err
	}

	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)

	handlers := make([]interface{}, len(m.subscriptions[topic]))
	copy(handlers, m.subscriptions[topic])
	m.mutex.Unlock()

	for _, handler := range handlers {
		m.invokeHandler(handler, event)
	}

	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions = make(map[string][]interface{})
	return nil
}

// SetPublishError makes every following Publish fail with err
func (m *MockEventBus) SetPublishError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishErr = err
}

// GetPublishedEvents returns a copy of the events published on topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]interface{}, len(m.publishedEvents[topic]))
	copy(result, m.publishedEvents[topic])
	return result
}

// GetSubscriberCount returns the number of subscribers for a topic
func (m *MockEventBus) GetSubscriberCount(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.subscriptions[topic])
}

// GetHandlerErrors returns handler panics and type mismatches seen so far
func (m *MockEventBus) GetHandlerErrors() []error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]error, len(m.errors))
	copy(result, m.errors)
	return result
}

// ClearEvents resets all published events
func (m *MockEventBus) ClearEvents() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishedEvents = make(map[string][]interface{})
}

func (m *MockEventBus) invokeHandler(handler interface{}, event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			m.recordError(fmt.Errorf("handler panic: %v", r))
		}
	}()

	fn := reflect.ValueOf(handler)
	if fn.Type().NumIn() != 1 || event == nil || !reflect.TypeOf(event).AssignableTo(fn.Type().In(0)) {
		m.recordError(fmt.Errorf("type mismatch: handler %s cannot take %T", fn.Type(), event))
		return
	}

	fn.Call([]reflect.Value{reflect.ValueOf(event)})
}

func (m *MockEventBus) recordError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errors = append(m.errors, err)
}

// AssertEventCount verifies the number of events published on a topic
func AssertEventCount(t *testing.T, mockBus *MockEventBus, topic string, expectedCount int) {
	t.Helper()
	events := mockBus.GetPublishedEvents(topic)
	if len(events) != expectedCount {
		t.Errorf("Expected %d events on topic %s, but got %d", expectedCount, topic, len(events))
	}
}
