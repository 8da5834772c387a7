package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// InlineKeyboard is a transport-independent inline keyboard
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton opens URL when pressed
type InlineButton struct {
	Text string
	URL  string
}

// NewLinkKeyboard puts one link button per row
func NewLinkKeyboard(buttons ...InlineButton) *InlineKeyboard {
	rows := make([][]InlineButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineButton{b})
	}
	return &InlineKeyboard{Rows: rows}
}

// toTelegram converts the keyboard to the Bot API markup
func (k InlineKeyboard) toTelegram() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(k.Rows))
	for _, row := range k.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
