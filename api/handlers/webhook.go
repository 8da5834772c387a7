package handlers

import (
	"context"
	"io"
	"net/http"

	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds a single update; real updates are a few KB
const maxWebhookBody = 1 << 20

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	service WebhookService
	logger  *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(service WebhookService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// HandleTelegramWebhook processes one update. It always answers 200 so that
// Telegram does not redeliver updates the bot could not handle.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	reqLogger := h.logger.WithRequestID(c.GetString("request_id"))

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		reqLogger.Errorw("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		reqLogger.Warnw("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if contentType := c.ContentType(); contentType != "application/json" {
		reqLogger.Warnw("Unexpected content type", "content_type", contentType)
	}

	// the update outlives a dropped webhook connection
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.service.HandleWebhook(ctx, body); err != nil {
		reqLogger.Errorw("Failed to process webhook",
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	reqLogger.Debugw("Webhook processed successfully", "body_size", len(body))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
