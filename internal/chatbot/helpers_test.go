package chatbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"binbot/internal/lookup"
	"binbot/internal/subscription"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandUpdate builds a message update the way Telegram marks commands
func commandUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 7, FirstName: "Ana"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.Index(text, " "); i >= 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

type stubLookup struct {
	result *lookup.Result
	err    error
	calls  []string
}

func (s *stubLookup) Lookup(ctx context.Context, raw string) (*lookup.Result, error) {
	s.calls = append(s.calls, raw)
	return s.result, s.err
}

func (s *stubLookup) Providers() []string {
	return []string{"binlist", "handyapi"}
}

type stubSubscriber struct {
	helper *subscription.Helper
	err    error
}

func (s *stubSubscriber) Subscribe(ctx context.Context, email, key string) (*subscription.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.helper.Subscribe(ctx, email, key)
}

func (s *stubSubscriber) Catalog() subscription.Catalog { return s.helper.Catalog() }

func (s *stubSubscriber) DefaultTarget() string { return s.helper.DefaultTarget() }

type recordingReporter struct {
	mu     sync.Mutex
	errors []error
	tags   []map[string]string
}

func (r *recordingReporter) CaptureError(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.tags = append(r.tags, tags)
}

func (r *recordingReporter) Flush() {}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// countingLimiter allows up to limit requests and records every call
type countingLimiter struct {
	mu    sync.Mutex
	limit int
	calls int
}

func (l *countingLimiter) Allow(context.Context, string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.calls <= l.limit
}

func (l *countingLimiter) Close() error { return nil }

func (l *countingLimiter) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) bool { return false }

func (denyAll) Close() error { return nil }

var errBoom = errors.New("boom")

func boolPtr(b bool) *bool { return &b }

func testResult() *lookup.Result {
	return &lookup.Result{
		BIN: "424242",
		Record: lookup.Record{
			BankName:    "Test Bank",
			CountryName: "US",
			CardType:    "debit",
			Scheme:      "visa",
			Prepaid:     boolPtr(false),
		},
		Source:   "binlist",
		Attempts: 1,
	}
}

func mustRouter(t *testing.T, h *Handlers) *Router {
	t.Helper()
	router, err := h.Router()
	if err != nil {
		t.Fatalf("building router: %v", err)
	}
	return router
}
