package handlers

import (
	"net/http"
	"time"

	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	lookup BINLookup
	logger *logger.Logger
}

func NewHealthHandler(lookup BINLookup, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		lookup: lookup,
		logger: logger,
	}
}

// Check reports "degraded" when no BIN provider is configured. The bot still
// answers every other command then, so the status code stays 200.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"

	providers := h.lookup.Providers()
	if len(providers) == 0 {
		h.logger.Warnw("Health check: no BIN providers configured")
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "binbot",
		"providers": providers,
	})
}
