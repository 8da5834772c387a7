package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"binbot/internal/events"
	"binbot/internal/reporting"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const internalErrorText = "⚠️ Ocurrió un error procesando el comando. Intenta de nuevo más tarde."

// Service routes incoming updates to their handler and delivers the reply
type Service struct {
	provider TelegramProvider
	router   *Router
	parser   *WebhookParser
	eventBus events.EventBus
	reporter reporting.Reporter
	logger   *zap.Logger
}

// NewService creates a new chatbot Service
func NewService(provider TelegramProvider, router *Router, eventBus events.EventBus, reporter reporting.Reporter, logger *zap.Logger) *Service {
	if reporter == nil {
		reporter = reporting.Noop{}
	}
	return &Service{
		provider: provider,
		router:   router,
		parser:   NewWebhookParser(),
		eventBus: eventBus,
		reporter: reporter,
		logger:   logger,
	}
}

// HandleWebhook parses a raw webhook body and handles the update
func (s *Service) HandleWebhook(ctx context.Context, webhookData []byte) error {
	update, err := s.parser.ParseUpdate(webhookData)
	if err != nil {
		s.logger.Warn("Failed to parse webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return err
	}

	return s.HandleUpdate(ctx, *update)
}

// HandleUpdate answers one update. Updates without a usable message are
// ignored. The returned error is a delivery failure that has already been
// logged and reported.
func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	cmd, ok := s.parser.ExtractCommand(&update)
	if !ok {
		s.logger.Debug("Ignoring update",
			zap.Int("update_id", update.UpdateID),
			zap.String("kind", s.parser.describe(&update)))
		return nil
	}

	return s.Dispatch(ctx, cmd)
}

// Dispatch routes cmd and sends the reply. A panicking handler is answered
// with a generic error message instead of taking the process down.
func (s *Service) Dispatch(ctx context.Context, cmd Command) error {
	route, known := s.router.Match(cmd)

	name := cmd.Name
	if cmd.IsText() {
		name = "text"
	}
	s.logger.Info("Processing command",
		zap.String("correlation_id", cmd.CorrelationID),
		zap.String("command", name),
		zap.Bool("known", known),
		zap.Int64("chat_id", cmd.ChatID))
	s.publish(events.TopicCommandReceived, events.CommandReceived{
		Event:   events.WithCorrelation(cmd.CorrelationID),
		ChatID:  cmd.ChatID,
		UserID:  cmd.UserID,
		Command: name,
		Known:   known,
	})

	if !known {
		return s.send(cmd, Reply{Text: FallbackText})
	}

	progressID := 0
	if route.Progress != nil {
		if text, ok := route.Progress(cmd); ok {
			id, sendErr := s.provider.SendMessage(cmd.ChatID, text)
			if sendErr != nil {
				s.deliveryFailed(cmd, "send_progress", sendErr)
			} else {
				progressID = id
			}
		}
	}

	reply := s.run(ctx, route, cmd)

	if progressID != 0 && reply.Keyboard == nil {
		if editErr := s.provider.EditMessageText(cmd.ChatID, progressID, reply.Text); editErr != nil {
			s.deliveryFailed(cmd, "edit_message", editErr)
			return editErr
		}
		return nil
	}

	return s.send(cmd, reply)
}

func (s *Service) run(ctx context.Context, route Route, cmd Command) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler /%s panicked: %v", route.Name, r)
			s.logger.Error("Command handler panicked",
				zap.String("correlation_id", cmd.CorrelationID),
				zap.Error(err))
			s.reporter.CaptureError(err, map[string]string{"command": route.Name})
			reply = Reply{Text: internalErrorText}
		}
	}()

	reply, err := route.Handler.Handle(ctx, cmd)
	if err != nil {
		s.logger.Error("Command handler failed",
			zap.String("correlation_id", cmd.CorrelationID),
			zap.String("command", route.Name),
			zap.Error(err))
		s.reporter.CaptureError(err, map[string]string{"command": route.Name})
		return Reply{Text: internalErrorText}
	}
	return reply
}

func (s *Service) send(cmd Command, reply Reply) error {
	var err error
	operation := "send_message"

	if reply.Keyboard != nil {
		operation = "send_keyboard"
		_, err = s.provider.SendMessageWithKeyboard(cmd.ChatID, reply.Text, reply.Keyboard.toTelegram())
	} else {
		_, err = s.provider.SendMessage(cmd.ChatID, reply.Text)
	}

	if err != nil {
		s.deliveryFailed(cmd, operation, err)
		return err
	}
	return nil
}

func (s *Service) deliveryFailed(cmd Command, operation string, err error) {
	s.logger.Error("Failed to deliver reply",
		zap.String("correlation_id", cmd.CorrelationID),
		zap.String("operation", operation),
		zap.Int64("chat_id", cmd.ChatID),
		zap.Error(err))
	tags := map[string]string{"operation": operation, "command": cmd.Name}
	var chatbotErr ChatbotError
	if errors.As(err, &chatbotErr) {
		tags["error_code"] = chatbotErr.Code()
		tags["temporary"] = strconv.FormatBool(chatbotErr.Temporary())
	}
	s.reporter.CaptureError(err, tags)
	s.publish(events.TopicDeliveryFailed, events.DeliveryFailed{
		Event:     events.WithCorrelation(cmd.CorrelationID),
		ChatID:    cmd.ChatID,
		Operation: operation,
		Error:     err.Error(),
	})
}

func (s *Service) publish(topic string, event interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(topic, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}
