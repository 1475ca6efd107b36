package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a message to a conversation. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string, opts SendOptions) error
}

// SendOptions carries per-message delivery options.
type SendOptions struct {
	// Markdown enables Markdown parse mode for the message body. Callers that
	// set this are responsible for escaping user-supplied fragments, see
	// EscapeMarkdown.
	Markdown bool
}

// NewLog returns a Notifier that only logs outgoing messages. Used in
// development when no bot token is configured.
func NewLog() Notifier {
	return &logNotifier{}
}

type logNotifier struct{}

func (n *logNotifier) Send(ctx context.Context, chatID int64, text string, opts SendOptions) error {
	slog.InfoContext(ctx, "outgoing message (log only)",
		"chat_id", chatID,
		"markdown", opts.Markdown,
		"text", text)
	return nil
}
