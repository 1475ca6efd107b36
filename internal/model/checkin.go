package model

import "time"

// CheckinState tracks reminder progress for one chat on one calendar day.
// The (ChatID, Date) pair is the only key; state for different days never
// overlaps because the day is part of the key.
type CheckinState struct {
	ChatID         int64      `json:"chat_id"`
	Date           string     `json:"date"` // YYYY-MM-DD in the reference timezone
	ReminderCount  int        `json:"reminder_count"`
	LastReminderAt *time.Time `json:"last_reminder_at,omitempty"`
	// CompletedAt is stamped at most once per key, when the chat first became
	// fully responded. It gates the completion announcement.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Response is one qualifying check-in message from a tracked participant.
// A participant counts as responded for a day if their Response row exists.
// Only the first message of the day is stored; repeats are dropped by the
// ledger's uniqueness on (chat, date, user).
type Response struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	MessageID int64     `json:"message_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
