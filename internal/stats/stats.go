package stats

import (
	"sync"
	"time"

	"binbot/internal/common"
	"binbot/internal/events"
)

// Collector counts what the bot did since start. It is fed exclusively by
// events and is only read for /status and /api/v1/stats.
type Collector struct {
	mu    sync.RWMutex
	clock common.Clock

	startedAt        time.Time
	commands         map[string]int64
	unknownCommands  int64
	lookupsBySource  map[string]int64
	lookupFailures   map[string]int64
	rejectedLookups  map[string]int64
	subscriptions    map[string]int64
	deliveryFailures int64
	totalLookupTime  time.Duration
	lastActivity     time.Time
}

// Summary is a point-in-time copy of the counters
type Summary struct {
	StartedAt           time.Time        `json:"started_at"`
	Uptime              string           `json:"uptime"`
	Commands            map[string]int64 `json:"commands"`
	UnknownCommands     int64            `json:"unknown_commands"`
	LookupsBySource     map[string]int64 `json:"lookups_by_source"`
	LookupFailures      map[string]int64 `json:"lookup_failures"`
	RejectedLookups     map[string]int64 `json:"rejected_lookups"`
	Subscriptions       map[string]int64 `json:"subscriptions"`
	DeliveryFailures    int64            `json:"delivery_failures"`
	AverageLookupTime   string           `json:"average_lookup_time"`
	LastActivity        time.Time        `json:"last_activity,omitempty"`
	SuccessfulLookups   int64            `json:"successful_lookups"`
	FailedLookups       int64            `json:"failed_lookups"`
	LookupFailureRatePc float64          `json:"lookup_failure_rate_percentage"`
}

// NewCollector creates a Collector whose uptime starts now
func NewCollector(clock common.Clock) *Collector {
	return &Collector{
		clock:           clock,
		startedAt:       clock.Now(),
		commands:        make(map[string]int64),
		lookupsBySource: make(map[string]int64),
		lookupFailures:  make(map[string]int64),
		rejectedLookups: make(map[string]int64),
		subscriptions:   make(map[string]int64),
	}
}

// Attach subscribes the collector to every topic it counts
func (c *Collector) Attach(bus events.EventBus) error {
	handlers := map[string]interface{}{
		events.TopicCommandReceived:       c.onCommand,
		events.TopicLookupCompleted:       c.onLookupCompleted,
		events.TopicLookupFailed:          c.onLookupFailed,
		events.TopicSubscriptionProcessed: c.onSubscription,
		events.TopicDeliveryFailed:        c.onDeliveryFailed,
	}

	for topic, handler := range handlers {
		if err := bus.Subscribe(topic, handler); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) onCommand(e events.CommandReceived) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Known {
		c.commands[e.Command]++
	} else {
		c.unknownCommands++
	}
	c.lastActivity = c.clock.Now()
}

func (c *Collector) onLookupCompleted(e events.LookupCompleted) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookupsBySource[e.Source]++
	c.totalLookupTime += e.Duration
}

func (c *Collector) onLookupFailed(e events.LookupFailed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.Rejected {
		c.rejectedLookups[e.Reason]++
		return
	}
	c.lookupFailures[e.Reason]++
}

func (c *Collector) onSubscription(e events.SubscriptionProcessed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subscriptions[e.Status]++
}

func (c *Collector) onDeliveryFailed(events.DeliveryFailed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deliveryFailures++
}

// Uptime returns the time elapsed since the collector was created
func (c *Collector) Uptime() time.Duration {
	return c.clock.Now().Sub(c.startedAt)
}

// Summary returns a copy of all counters
func (c *Collector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ok, failed int64
	for _, n := range c.lookupsBySource {
		ok += n
	}
	for _, n := range c.lookupFailures {
		failed += n
	}

	var avg time.Duration
	if ok > 0 {
		avg = c.totalLookupTime / time.Duration(ok)
	}

	var failureRate float64
	if ok+failed > 0 {
		failureRate = float64(failed) / float64(ok+failed) * 100
	}

	return Summary{
		StartedAt:           c.startedAt,
		Uptime:              common.FormatUptime(c.Uptime()),
		Commands:            copyCounts(c.commands),
		UnknownCommands:     c.unknownCommands,
		LookupsBySource:     copyCounts(c.lookupsBySource),
		LookupFailures:      copyCounts(c.lookupFailures),
		RejectedLookups:     copyCounts(c.rejectedLookups),
		Subscriptions:       copyCounts(c.subscriptions),
		DeliveryFailures:    c.deliveryFailures,
		AverageLookupTime:   avg.String(),
		LastActivity:        c.lastActivity,
		SuccessfulLookups:   ok,
		FailedLookups:       failed,
		LookupFailureRatePc: failureRate,
	}
}

// StartedAt formats the start time in timezone, e.g. "2024-05-01 12:00:00"
func (c *Collector) StartedAt(timezone string) string {
	return common.FormatDateTime(c.startedAt, timezone)
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
