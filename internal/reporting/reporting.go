package reporting

import (
	"time"

	"binbot/internal/config"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const flushTimeout = 2 * time.Second

// Reporter forwards errors that deserve attention outside the logs
type Reporter interface {
	CaptureError(err error, tags map[string]string)
	Flush()
}

// New returns a Sentry reporter when a DSN is configured, and a Noop
// reporter otherwise. A bad DSN never blocks startup.
func New(cfg config.ReportingConfig, logger *zap.Logger) Reporter {
	if cfg.SentryDSN == "" {
		logger.Info("Sentry DSN empty, error reporting disabled")
		return Noop{}
	}

	reporter, err := NewSentry(cfg, logger)
	if err != nil {
		logger.Warn("Sentry init failed, error reporting disabled", zap.Error(err))
		return Noop{}
	}

	logger.Info("Sentry initialized", zap.String("environment", cfg.Environment))
	return reporter
}

// Noop drops everything
type Noop struct{}

func (Noop) CaptureError(error, map[string]string) {}

func (Noop) Flush() {}

// Sentry reports through its own hub, leaving the global hub untouched
type Sentry struct {
	hub    *sentry.Hub
	logger *zap.Logger
}

// NewSentry creates a Sentry reporter for cfg.SentryDSN
func NewSentry(cfg config.ReportingConfig, logger *zap.Logger) (*Sentry, error) {
	return newSentry(cfg, logger, nil)
}

// newSentry lets tests observe events instead of sending them
func newSentry(cfg config.ReportingConfig, logger *zap.Logger, observe func(*sentry.Event)) (*Sentry, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// chat users are not ours to report
			event.User = sentry.User{}
			if observe != nil {
				observe(event)
				return nil
			}
			return event
		},
	})
	if err != nil {
		return nil, err
	}

	return &Sentry{
		hub:    sentry.NewHub(client, sentry.NewScope()),
		logger: logger,
	}, nil
}

func (s *Sentry) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	// poller workers report concurrently; a hub is only safe on one goroutine
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.CaptureException(err)
}

func (s *Sentry) Flush() {
	if ok := s.hub.Flush(flushTimeout); !ok {
		s.logger.Warn("Sentry flush timed out")
	}
}
