package handlers

import (
	"context"

	"binbot/internal/lookup"
	"binbot/internal/stats"

	"github.com/stretchr/testify/mock"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, raw string) (*lookup.Result, error) {
	args := m.Called(ctx, raw)
	result, _ := args.Get(0).(*lookup.Result)
	return result, args.Error(1)
}

func (m *mockLookup) Providers() []string {
	args := m.Called()
	providers, _ := args.Get(0).([]string)
	return providers
}

type mockWebhookService struct {
	mock.Mock
}

func (m *mockWebhookService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	return m.Called(ctx, webhookData).Error(0)
}

type staticStats stats.Summary

func (s staticStats) Summary() stats.Summary { return stats.Summary(s) }
