package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"rollcall.app/bot/internal/model"
)

// EventMessage is one check-in event bound for the stream. Trigger events
// carry only their kind; qualifying messages carry the sender and message
// details.
type EventMessage struct {
	Kind      model.EventKind
	ChatID    int64
	UserID    int64
	Handle    string
	MessageID int64
	Text      string
	// ObservedAt is the unix-second timestamp of the underlying message.
	// Zero means the processor should use its own clock.
	ObservedAt int64
	TraceID    *string
	Attempt    int
}

type Producer interface {
	Enqueue(ctx context.Context, msg EventMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg EventMessage) error {
	if !msg.Kind.Valid() {
		return fmt.Errorf("invalid event kind %q", msg.Kind)
	}

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"kind":    string(msg.Kind),
		"attempt": attempt,
	}
	if msg.ChatID != 0 {
		fields["chat_id"] = msg.ChatID
	}
	if msg.UserID != 0 {
		fields["user_id"] = msg.UserID
	}
	if msg.Handle != "" {
		fields["handle"] = msg.Handle
	}
	if msg.MessageID != 0 {
		fields["message_id"] = msg.MessageID
	}
	if msg.Text != "" {
		fields["text"] = msg.Text
	}
	if msg.ObservedAt != 0 {
		fields["observed_at"] = msg.ObservedAt
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued event", "kind", msg.Kind, "chat_id", msg.ChatID, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
