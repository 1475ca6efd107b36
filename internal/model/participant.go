package model

import "time"

// Participant is a tracked member of a group conversation. Identity is the
// (ChatID, UserID) pair; UserID is the chat platform's stable numeric id.
// The directory owns the active flag and the display handle; the escalation
// engine only reads them.
type Participant struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Handle    string    `json:"handle"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
