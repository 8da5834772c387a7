package handlers

import (
	"context"

	"binbot/internal/lookup"
	"binbot/internal/stats"
)

// BINLookup is the lookup capability exposed over HTTP
type BINLookup interface {
	Lookup(ctx context.Context, raw string) (*lookup.Result, error)
	Providers() []string
}

// WebhookService handles raw Telegram webhook bodies
type WebhookService interface {
	HandleWebhook(ctx context.Context, webhookData []byte) error
}

// StatsSource exposes the bot counters
type StatsSource interface {
	Summary() stats.Summary
}

type errorBody struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}
