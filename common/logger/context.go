package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment, so the chat/date a piece
// of work belongs to shows up on every log line without threading arguments.
type LogFields struct {
	ChatID    *int64  // conversation being processed
	UserID    *int64  // participant the operation concerns
	Date      *string // calendar day key (reference timezone)
	MessageID *string // redis stream message ID
	EventKind *string // event kind ("opening-trigger", "qualifying-message", ...)
	Component string  // component name, e.g. "rollcall.service.escalation"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ChatID != nil {
		result.ChatID = next.ChatID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.Date != nil {
		result.Date = next.Date
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.EventKind != nil {
		result.EventKind = next.EventKind
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ChatID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}
