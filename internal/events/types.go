package events

import (
	"time"

	"github.com/google/uuid"
)

// Event topics
const (
	TopicCommandReceived       = "command.received"
	TopicLookupCompleted       = "lookup.completed"
	TopicLookupFailed          = "lookup.failed"
	TopicSubscriptionProcessed = "subscription.processed"
	TopicDeliveryFailed        = "delivery.failed"
)

// Event carries the fields shared by every event
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// WithCorrelation creates a base event that continues an existing flow
func WithCorrelation(correlationID string) Event {
	if correlationID == "" {
		return NewEvent()
	}
	return Event{
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// CommandReceived is published for every routed chat command, including
// unknown ones.
type CommandReceived struct {
	Event
	ChatID  int64  `json:"chat_id"`
	UserID  int64  `json:"user_id"`
	Command string `json:"command"`
	Known   bool   `json:"known"`
}

// LookupCompleted is published when a provider answered a BIN lookup
type LookupCompleted struct {
	Event
	ChatID   int64         `json:"chat_id"`
	BIN      string        `json:"bin"`
	Source   string        `json:"source"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
}

// LookupFailed is published for every /bin request that produced no record.
// Reason is the error code, e.g. NOT_FOUND. Rejected marks requests refused
// before any provider was asked (bad input, rate limit).
type LookupFailed struct {
	Event
	ChatID   int64  `json:"chat_id"`
	Input    string `json:"input"`
	Reason   string `json:"reason"`
	Rejected bool   `json:"rejected"`
}

// SubscriptionProcessed is published after a /subs request. Status mirrors
// the subscription helper outcome.
type SubscriptionProcessed struct {
	Event
	ChatID     int64  `json:"chat_id"`
	Newsletter string `json:"newsletter"`
	Status     string `json:"status"`
}

// DeliveryFailed is published when a reply could not be sent to Telegram
type DeliveryFailed struct {
	Event
	ChatID    int64  `json:"chat_id"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}
