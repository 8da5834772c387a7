package routes

import (
	"binbot/api/handlers"
	"binbot/api/middleware"
	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Deps are the services exposed over HTTP. Webhook is nil in polling mode,
// which leaves the webhook route unregistered.
type Deps struct {
	Lookup  handlers.BINLookup
	Stats   handlers.StatsSource
	Webhook handlers.WebhookService
	Logger  *logger.Logger
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(deps.Lookup, deps.Logger)
	binHandler := handlers.NewBINHandler(deps.Lookup, deps.Logger)
	statsHandler := handlers.NewStatsHandler(deps.Stats)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		v1.GET("/bin/:bin", binHandler.Lookup)
		v1.GET("/stats", statsHandler.Get)

		if deps.Webhook != nil {
			webhookHandler := handlers.NewWebhookHandler(deps.Webhook, deps.Logger)
			v1.POST("/telegram/webhook", webhookHandler.HandleTelegramWebhook)
		}
	}

	router.GET("/health", healthHandler.Check)
}
