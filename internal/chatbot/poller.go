package chatbot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"binbot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var (
	ErrPollerRunning    = errors.New("poller is already running")
	ErrPollerNotRunning = errors.New("poller is not running")
	ErrShutdownTimeout  = errors.New("poller shutdown timed out")
)

// UpdateHandler is the part of Service the poller needs
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Poller pulls updates by long polling and fans them out to a fixed pool of
// workers, so one slow lookup never blocks other chats.
type Poller struct {
	provider TelegramProvider
	handler  UpdateHandler
	cfg      config.ChatbotConfig
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPoller creates a Poller; cfg.WorkerCount must be positive
func NewPoller(provider TelegramProvider, handler UpdateHandler, cfg config.ChatbotConfig, logger *zap.Logger) *Poller {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return &Poller{
		provider: provider,
		handler:  handler,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start begins long polling and starts the workers
func (p *Poller) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPollerRunning
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	updates := p.provider.GetUpdatesChan(p.cfg.Timeout)

	p.logger.Info("Starting update poller",
		zap.Int("worker_count", p.cfg.WorkerCount),
		zap.Int("poll_timeout_seconds", p.cfg.Timeout))

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, updates)
	}

	return nil
}

func (p *Poller) worker(id int, updates tgbotapi.UpdatesChannel) {
	defer p.wg.Done()

	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Debug("Poller worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("Poller worker stopping")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Debug("Update channel closed")
				return
			}
			// delivery failures are already logged and reported by the handler
			_ = p.handler.HandleUpdate(p.ctx, update)
		}
	}
}

// Stop stops long polling and waits for in-flight updates
func (p *Poller) Stop() error {
	if !p.running.Load() {
		return ErrPollerNotRunning
	}

	p.logger.Info("Stopping update poller...")
	p.provider.StopReceivingUpdates()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timeout := time.Duration(p.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// polling has stopped either way; stragglers finish on a cancelled context
	defer p.running.Store(false)

	select {
	case <-done:
		p.logger.Info("Update poller stopped")
		return nil
	case <-time.After(timeout):
		p.logger.Warn("Poller shutdown timed out, some updates may still be in flight")
		return ErrShutdownTimeout
	}
}

// IsRunning returns true while the poller is started
func (p *Poller) IsRunning() bool {
	return p.running.Load()
}
