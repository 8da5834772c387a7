package chatbot

import (
	"context"
	"sync"
	"testing"
	"time"

	"binbot/internal/config"
	"binbot/internal/mocks"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

type recordingHandler struct {
	mu      sync.Mutex
	updates []int
	done    chan struct{}
	block   chan struct{}
}

func (h *recordingHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if h.block != nil {
		select {
		case <-h.block:
		case <-ctx.Done():
		}
	}
	h.mu.Lock()
	h.updates = append(h.updates, update.UpdateID)
	h.mu.Unlock()
	if h.done != nil {
		h.done <- struct{}{}
	}
	return nil
}

func (h *recordingHandler) seen() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.updates))
	copy(out, h.updates)
	return out
}

func TestPoller_DispatchesUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)

	updates := make(chan tgbotapi.Update, 3)
	provider.EXPECT().GetUpdatesChan(30).Return(tgbotapi.UpdatesChannel(updates))
	provider.EXPECT().StopReceivingUpdates()

	handler := &recordingHandler{done: make(chan struct{}, 3)}
	poller := NewPoller(provider, handler, config.ChatbotConfig{Timeout: 30, WorkerCount: 2, ShutdownTimeout: 1}, zaptest.NewLogger(t))

	require.NoError(t, poller.Start(context.Background()))
	assert.True(t, poller.IsRunning())

	for i := 1; i <= 3; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}
	for i := 0; i < 3; i++ {
		select {
		case <-handler.done:
		case <-time.After(2 * time.Second):
			t.Fatal("update was not handled")
		}
	}

	require.NoError(t, poller.Stop())
	assert.False(t, poller.IsRunning())
	assert.ElementsMatch(t, []int{1, 2, 3}, handler.seen())
}

func TestPoller_StartTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)

	provider.EXPECT().GetUpdatesChan(gomock.Any()).Return(tgbotapi.UpdatesChannel(make(chan tgbotapi.Update))).Times(1)
	provider.EXPECT().StopReceivingUpdates()

	poller := NewPoller(provider, &recordingHandler{}, config.ChatbotConfig{WorkerCount: 1}, zaptest.NewLogger(t))

	require.NoError(t, poller.Start(context.Background()))
	assert.ErrorIs(t, poller.Start(context.Background()), ErrPollerRunning)
	require.NoError(t, poller.Stop())
}

func TestPoller_StopWhenNotRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)

	poller := NewPoller(provider, &recordingHandler{}, config.ChatbotConfig{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, poller.Stop(), ErrPollerNotRunning)
}

func TestPoller_StopCancelsInFlightUpdates(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)

	updates := make(chan tgbotapi.Update, 1)
	provider.EXPECT().GetUpdatesChan(gomock.Any()).Return(tgbotapi.UpdatesChannel(updates))
	provider.EXPECT().StopReceivingUpdates()

	// block is never closed; only cancellation releases the handler
	handler := &recordingHandler{done: make(chan struct{}, 1), block: make(chan struct{})}
	poller := NewPoller(provider, handler, config.ChatbotConfig{WorkerCount: 1, ShutdownTimeout: 2}, zaptest.NewLogger(t))

	require.NoError(t, poller.Start(context.Background()))
	updates <- tgbotapi.Update{UpdateID: 9}

	require.Eventually(t, func() bool { return len(updates) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, poller.Stop())

	<-handler.done
	assert.Equal(t, []int{9}, handler.seen())
}

type stuckHandler struct {
	started chan struct{}
	release chan struct{}
}

func (h *stuckHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	close(h.started)
	<-h.release
	return nil
}

func TestPoller_ShutdownTimeoutLeavesPollerStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTelegramProvider(ctrl)

	updates := make(chan tgbotapi.Update, 1)
	provider.EXPECT().GetUpdatesChan(gomock.Any()).Return(tgbotapi.UpdatesChannel(updates))
	provider.EXPECT().StopReceivingUpdates()

	handler := &stuckHandler{started: make(chan struct{}), release: make(chan struct{})}
	defer close(handler.release)

	poller := NewPoller(provider, handler, config.ChatbotConfig{WorkerCount: 1, ShutdownTimeout: 1}, zaptest.NewLogger(t))

	require.NoError(t, poller.Start(context.Background()))
	updates <- tgbotapi.Update{UpdateID: 1}
	<-handler.started

	assert.ErrorIs(t, poller.Stop(), ErrShutdownTimeout)
	assert.False(t, poller.IsRunning())
	assert.ErrorIs(t, poller.Stop(), ErrPollerNotRunning)
}
