package store

import (
	"context"
	"errors"
	"time"

	"rollcall.app/bot/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ParticipantStore defines the contract for participant data access.
// It backs the participant directory; the escalation engine never touches
// it directly.
type ParticipantStore interface {
	// ActiveChatIDs lists the distinct chats that have at least one active
	// participant. These are the tracked conversations.
	ActiveChatIDs(ctx context.Context) ([]int64, error)
	// ListActiveByChat returns active participants in stable enumeration
	// order (insertion order), which downstream mention rendering relies on.
	ListActiveByChat(ctx context.Context, chatID int64) ([]model.Participant, error)
	Get(ctx context.Context, chatID, userID int64) (*model.Participant, error)
	Upsert(ctx context.Context, p *model.Participant) error
	Deactivate(ctx context.Context, chatID, userID int64) error
}

// LedgerStore records qualifying responses per chat and day. The ledger holds
// at most one row per (chat, date, user): recording is a set-add, and the
// responded set is the set of users with a row.
type LedgerStore interface {
	// Record inserts the response unless one already exists for the same
	// (chat, date, user), and reports whether this call inserted. The check
	// and the insert are one atomic operation, so concurrent duplicate
	// deliveries agree on exactly one first response.
	Record(ctx context.Context, resp *model.Response) (bool, error)
	HasResponded(ctx context.Context, chatID int64, date string, userID int64) (bool, error)
	GetResponded(ctx context.Context, chatID int64, date string) ([]int64, error)
	// GetUnresponded returns trackedIDs minus the responded set, preserving
	// the order of trackedIDs.
	GetUnresponded(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error)
	// ResetDay clears all responses for the key, as if the day never happened.
	ResetDay(ctx context.Context, chatID int64, date string) error
}

// CounterStore tracks how many reminders have gone out per chat and day.
type CounterStore interface {
	GetOrCreate(ctx context.Context, chatID int64, date string) (*model.CheckinState, error)
	// Increment atomically bumps the count, stamps the last-reminder time and
	// returns the post-increment value. Returning the new count is what lets
	// the cap check run off a single consistent number instead of a separate
	// read that could race a concurrent firing.
	Increment(ctx context.Context, chatID int64, date string, at time.Time) (int, error)
	GetCount(ctx context.Context, chatID int64, date string) (int, error)
	Reset(ctx context.Context, chatID int64, date string) error
	LastReminderAt(ctx context.Context, chatID int64, date string) (*time.Time, error)
	// MarkCompleted stamps the key as fully responded and reports whether this
	// call was the one that stamped it. It returns true at most once per key,
	// which is what keeps the completion announcement single-shot when two
	// responses finish the chat at the same moment.
	MarkCompleted(ctx context.Context, chatID int64, date string) (bool, error)
}

// diffOrdered returns tracked minus responded, preserving tracked's order.
func diffOrdered(tracked, responded []int64) []int64 {
	seen := make(map[int64]struct{}, len(responded))
	for _, id := range responded {
		seen[id] = struct{}{}
	}
	out := make([]int64, 0, len(tracked))
	for _, id := range tracked {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
