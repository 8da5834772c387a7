package chatbot

import (
	"errors"
	"fmt"
	"time"

	"binbot/internal/config"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements TelegramProvider with telegram-bot-api
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramProvider connects to the Bot API. Transient failures are
// retried with exponential backoff; a rejected token fails immediately.
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 1 * time.Second
	strategy.MaxInterval = 30 * time.Second
	strategy.MaxElapsedTime = 2 * time.Minute

	var bot *tgbotapi.BotAPI
	operation := func() error {
		var err error
		bot, err = tgbotapi.NewBotAPI(cfg.Token)
		if err == nil {
			return nil
		}

		apiErr := newTelegramAPIError("connect", err)
		if !apiErr.Temporary() && apiErr.StatusCode != 0 {
			return backoff.Permanent(apiErr)
		}
		logger.Warn("Telegram connection failed, retrying", zap.Error(err))
		return apiErr
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(strategy, uint64(cfg.MaxRetries))); err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:    bot,
		logger: logger,
	}, nil
}

func (p *telegramProvider) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	return p.send("send_message", chatID, msg)
}

func (p *telegramProvider) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = keyboard

	return p.send("send_keyboard", chatID, msg)
}

func (p *telegramProvider) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	_, err := p.send("edit_message", chatID, edit)
	return err
}

func (p *telegramProvider) send(operation string, chatID int64, c tgbotapi.Chattable) (int, error) {
	sent, err := p.bot.Send(c)
	if err != nil {
		p.logger.Error("Telegram request failed",
			zap.String("operation", operation),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return 0, newTelegramAPIError(operation, err)
	}

	p.logger.Debug("Telegram request succeeded",
		zap.String("operation", operation),
		zap.Int64("chat_id", chatID),
		zap.Int("message_id", sent.MessageID))

	return sent.MessageID, nil
}

func (p *telegramProvider) GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return p.bot.GetUpdatesChan(u)
}

func (p *telegramProvider) StopReceivingUpdates() {
	p.bot.StopReceivingUpdates()
}

func (p *telegramProvider) SetWebhook(webhookURL string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to create webhook config: %w", err)
	}

	if _, err := p.bot.Request(webhookConfig); err != nil {
		return newTelegramAPIError("set_webhook", err)
	}

	return nil
}

func (p *telegramProvider) DeleteWebhook() error {
	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return newTelegramAPIError("delete_webhook", err)
	}
	return nil
}

func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	me, err := p.bot.GetMe()
	if err != nil {
		return nil, newTelegramAPIError("get_me", err)
	}
	return &me, nil
}

// newTelegramAPIError extracts the Bot API error code and retry hint, if any
func newTelegramAPIError(operation string, err error) TelegramAPIError {
	apiErr := TelegramAPIError{
		Operation:   operation,
		Description: err.Error(),
		Cause:       err,
	}

	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		apiErr.StatusCode = tgErr.Code
		apiErr.Description = tgErr.Message
		apiErr.RetryAfter = tgErr.RetryAfter
	}

	return apiErr
}
