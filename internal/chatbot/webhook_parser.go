package chatbot

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// WebhookParser turns raw webhook bodies and updates into Commands
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, WebhookParsingError{Details: "empty update data"}
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, WebhookParsingError{Details: "failed to unmarshal update data", Cause: err}
	}

	if update.UpdateID == 0 {
		return nil, WebhookParsingError{Details: "invalid update: missing update ID"}
	}

	return &update, nil
}

// ExtractCommand builds a Command from a message update. It returns false
// for updates this bot does not answer (edits, callbacks, media without
// text, channel posts).
func (p *WebhookParser) ExtractCommand(update *tgbotapi.Update) (Command, bool) {
	if update == nil || update.Message == nil || update.Message.Chat == nil {
		return Command{}, false
	}

	msg := update.Message
	cmd := Command{
		ChatID:        msg.Chat.ID,
		MessageID:     msg.MessageID,
		CorrelationID: uuid.New().String(),
	}
	if msg.From != nil {
		cmd.UserID = msg.From.ID
		cmd.FirstName = msg.From.FirstName
	}

	if msg.IsCommand() {
		cmd.Name = strings.ToLower(msg.Command())
		cmd.Args = strings.TrimSpace(msg.CommandArguments())
		return cmd, true
	}

	if strings.TrimSpace(msg.Text) == "" {
		return Command{}, false
	}
	cmd.Args = msg.Text
	return cmd, true
}

// describe is used in log lines
func (p *WebhookParser) describe(update *tgbotapi.Update) string {
	switch {
	case update.Message != nil:
		return fmt.Sprintf("message %d", update.Message.MessageID)
	case update.EditedMessage != nil:
		return "edited_message"
	case update.CallbackQuery != nil:
		return "callback_query"
	default:
		return "other"
	}
}
