package stats

import (
	"testing"
	"time"

	"binbot/internal/common"
	"binbot/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCollector_CountsEvents(t *testing.T) {
	clock := common.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	collector := NewCollector(clock)

	bus := events.NewEventBus(zaptest.NewLogger(t))
	defer bus.Close()
	require.NoError(t, collector.Attach(bus))

	publish := func(topic string, e interface{}) {
		require.NoError(t, bus.Publish(topic, e))
	}

	publish(events.TopicCommandReceived, events.CommandReceived{Command: "bin", Known: true})
	publish(events.TopicCommandReceived, events.CommandReceived{Command: "bin", Known: true})
	publish(events.TopicCommandReceived, events.CommandReceived{Command: "foo"})
	publish(events.TopicLookupCompleted, events.LookupCompleted{Source: "binlist", Duration: 100 * time.Millisecond})
	publish(events.TopicLookupCompleted, events.LookupCompleted{Source: "handyapi", Duration: 300 * time.Millisecond})
	publish(events.TopicLookupFailed, events.LookupFailed{Reason: "NOT_FOUND"})
	publish(events.TopicLookupFailed, events.LookupFailed{Reason: "ALL_PROVIDERS_FAILED"})
	publish(events.TopicLookupFailed, events.LookupFailed{Reason: "INVALID_IDENTIFIER", Rejected: true})
	publish(events.TopicLookupFailed, events.LookupFailed{Reason: "RATE_LIMITED", Rejected: true})
	publish(events.TopicSubscriptionProcessed, events.SubscriptionProcessed{Status: "manual"})
	publish(events.TopicDeliveryFailed, events.DeliveryFailed{Operation: "send_message"})

	clock.Advance(90 * time.Second)
	summary := collector.Summary()

	assert.Equal(t, int64(2), summary.Commands["bin"])
	assert.Equal(t, int64(1), summary.UnknownCommands)
	assert.Equal(t, map[string]int64{"binlist": 1, "handyapi": 1}, summary.LookupsBySource)
	assert.Equal(t, int64(1), summary.LookupFailures["NOT_FOUND"])
	assert.NotContains(t, summary.LookupFailures, "INVALID_IDENTIFIER")
	assert.Equal(t, map[string]int64{"INVALID_IDENTIFIER": 1, "RATE_LIMITED": 1}, summary.RejectedLookups)
	assert.Equal(t, int64(2), summary.SuccessfulLookups)
	assert.Equal(t, int64(2), summary.FailedLookups)
	assert.InDelta(t, 50.0, summary.LookupFailureRatePc, 0.001)
	assert.Equal(t, "200ms", summary.AverageLookupTime)
	assert.Equal(t, int64(1), summary.Subscriptions["manual"])
	assert.Equal(t, int64(1), summary.DeliveryFailures)
	assert.Equal(t, "1m30s", summary.Uptime)
}

func TestCollector_SummaryIsACopy(t *testing.T) {
	collector := NewCollector(common.NewRealClock())
	collector.onLookupCompleted(events.LookupCompleted{Source: "binlist"})

	summary := collector.Summary()
	summary.LookupsBySource["binlist"] = 100

	assert.Equal(t, int64(1), collector.Summary().LookupsBySource["binlist"])
}

func TestCollector_Empty(t *testing.T) {
	collector := NewCollector(common.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	summary := collector.Summary()

	assert.Zero(t, summary.SuccessfulLookups)
	assert.Zero(t, summary.LookupFailureRatePc)
	assert.Equal(t, "0s", summary.AverageLookupTime)
	assert.Equal(t, "2024-05-01 12:00:00", collector.StartedAt("UTC"))
}
