package chatbot

import "context"

// Command is one incoming chat message, already split into command name and
// arguments. Name is empty for plain text.
type Command struct {
	Name          string
	Args          string
	ChatID        int64
	UserID        int64
	FirstName     string
	MessageID     int
	CorrelationID string
}

// IsText reports whether the message was plain text rather than a command
func (c Command) IsText() bool {
	return c.Name == ""
}

// Reply is what a handler wants sent back to the chat
type Reply struct {
	Text     string
	Keyboard *InlineKeyboard
}

// Handler turns a Command into a Reply. A returned error is unexpected; user
// mistakes are answered with a Reply.
type Handler interface {
	Handle(ctx context.Context, cmd Command) (Reply, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, cmd Command) (Reply, error)

func (f HandlerFunc) Handle(ctx context.Context, cmd Command) (Reply, error) {
	return f(ctx, cmd)
}

// ProgressFunc returns a placeholder text to send while the handler runs, or
// false to send the reply directly.
type ProgressFunc func(cmd Command) (string, bool)

// Route binds a command name to its handler
type Route struct {
	Name        string
	Usage       string
	Description string
	Handler     Handler
	Progress    ProgressFunc
}
