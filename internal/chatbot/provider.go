package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate mockgen -source=provider.go -destination=../mocks/telegram_provider_mock.go -package=mocks

// TelegramProvider defines the contract for Telegram API operations
type TelegramProvider interface {
	// SendMessage sends an HTML message and returns its message ID
	SendMessage(chatID int64, text string) (int, error)

	// SendMessageWithKeyboard sends an HTML message with an inline keyboard
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error)

	// EditMessageText replaces the text of a message sent earlier
	EditMessageText(chatID int64, messageID int, text string) error

	// GetUpdatesChan starts long polling
	GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel

	// StopReceivingUpdates stops long polling
	StopReceivingUpdates()

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)
}
