package chatbot

import (
	"fmt"
	"net/http"
)

// ChatbotError defines the interface for chatbot-specific errors
type ChatbotError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

var (
	_ ChatbotError = TelegramAPIError{}
	_ ChatbotError = WebhookParsingError{}
)

// TelegramAPIError is a failed Bot API call. It is logged and reported but
// never stops the bot.
type TelegramAPIError struct {
	Operation   string
	StatusCode  int
	Description string
	RetryAfter  int
	Cause       error
}

func (e TelegramAPIError) Error() string {
	return fmt.Sprintf("telegram API error during %s: %s (status: %d)", e.Operation, e.Description, e.StatusCode)
}

func (e TelegramAPIError) Code() string {
	if name, ok := telegramErrorCodes[e.StatusCode]; ok {
		return "TELEGRAM_" + name
	}
	return "TELEGRAM_API_ERROR"
}

func (e TelegramAPIError) Message() string {
	return e.Description
}

func (e TelegramAPIError) Temporary() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError ||
		e.RetryAfter > 0
}

func (e TelegramAPIError) Unwrap() error {
	return e.Cause
}

// WebhookParsingError is returned for webhook payloads that are not updates
type WebhookParsingError struct {
	Details string
	Cause   error
}

func (e WebhookParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("webhook parsing error: %s (caused by: %v)", e.Details, e.Cause)
	}
	return fmt.Sprintf("webhook parsing error: %s", e.Details)
}

func (e WebhookParsingError) Code() string {
	return "WEBHOOK_PARSING_ERROR"
}

func (e WebhookParsingError) Message() string {
	return e.Details
}

func (e WebhookParsingError) Temporary() bool {
	return false
}

func (e WebhookParsingError) Unwrap() error {
	return e.Cause
}

// DuplicateRouteError is returned when two routes claim the same command
type DuplicateRouteError struct {
	Name string
}

func (e DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route for command /%s", e.Name)
}

// IsTelegramAPIError determines if an error is from Telegram API
func IsTelegramAPIError(err error) bool {
	_, ok := err.(TelegramAPIError)
	return ok
}

// IsWebhookParsingError determines if an error is from webhook parsing
func IsWebhookParsingError(err error) bool {
	_, ok := err.(WebhookParsingError)
	return ok
}

var telegramErrorCodes = map[int]string{
	400: "BAD_REQUEST",
	401: "UNAUTHORIZED",
	403: "FORBIDDEN",
	404: "NOT_FOUND",
	409: "CONFLICT",
	429: "TOO_MANY_REQUESTS",
	500: "INTERNAL_SERVER_ERROR",
	502: "BAD_GATEWAY",
	503: "SERVICE_UNAVAILABLE",
	504: "GATEWAY_TIMEOUT",
}
