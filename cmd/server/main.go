package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"binbot/api/routes"
	"binbot/internal/chatbot"
	"binbot/internal/common"
	"binbot/internal/config"
	"binbot/internal/events"
	"binbot/internal/lookup"
	"binbot/internal/ratelimit"
	"binbot/internal/reporting"
	"binbot/internal/stats"
	"binbot/internal/subscription"
	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Server.Environment)
	defer logger.Sync()

	zapLogger := logger.Zap()

	reporter := reporting.New(cfg.Reporting, zapLogger)
	defer reporter.Flush()

	eventBus := events.NewEventBus(zapLogger)
	clock := common.NewRealClock()

	collector := stats.NewCollector(clock)
	if err := collector.Attach(eventBus); err != nil {
		logger.Fatalw("Failed to attach stats collector", "error", err)
	}

	httpClient := &http.Client{}
	coordinator := lookup.NewCoordinator(lookup.NewProvidersFromConfig(cfg.Lookup, zapLogger), httpClient, zapLogger)
	subscriptions := subscription.NewHelper(cfg.Subscription, httpClient, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := ratelimit.New(ctx, cfg.RateLimit, zapLogger)
	defer limiter.Close()

	provider, err := chatbot.NewTelegramProvider(cfg.Chatbot, zapLogger)
	if err != nil {
		reporter.CaptureError(err, map[string]string{"operation": "connect"})
		reporter.Flush()
		logger.Fatalw("Failed to connect to Telegram", "error", err)
	}

	me, err := provider.GetMe()
	if err != nil {
		logger.Warnw("Failed to fetch bot identity", "error", err)
	} else {
		logger.Infow("bot started", "username", me.UserName, "mode", cfg.Chatbot.Mode)
	}

	handlers := chatbot.NewHandlers(chatbot.HandlerDeps{
		Lookup:        coordinator,
		Subscriptions: subscriptions,
		Stats:         collector,
		Limiter:       limiter,
		EventBus:      eventBus,
		Clock:         clock,
		Timezone:      cfg.Chatbot.Timezone,
		Logger:        zapLogger,
	})
	router, err := handlers.Router()
	if err != nil {
		logger.Fatalw("Failed to build command router", "error", err)
	}
	service := chatbot.NewService(provider, router, eventBus, reporter, zapLogger)

	deps := routes.Deps{
		Lookup: coordinator,
		Stats:  collector,
		Logger: logger,
	}

	var poller *chatbot.Poller
	switch cfg.Chatbot.Mode {
	case config.ModeWebhook:
		if err := provider.SetWebhook(cfg.Chatbot.WebhookURL); err != nil {
			logger.Fatalw("Failed to register webhook", "error", err)
		}
		deps.Webhook = service
	default:
		// a leftover webhook makes getUpdates fail with 409
		if err := provider.DeleteWebhook(); err != nil {
			logger.Warnw("Failed to delete webhook", "error", err)
		}
		poller = chatbot.NewPoller(provider, service, cfg.Chatbot, zapLogger)
		if err := poller.Start(ctx); err != nil {
			logger.Fatalw("Failed to start update poller", "error", err)
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	routes.SetupRoutes(engine, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infow("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	if poller != nil {
		if err := poller.Stop(); err != nil {
			logger.Errorw("Failed to stop update poller gracefully", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Chatbot.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	if err := eventBus.Close(); err != nil {
		logger.Errorw("Failed to close event bus", "error", err)
	}

	zapLogger.Info("Server exited", zap.Duration("uptime", collector.Uptime()))
}
