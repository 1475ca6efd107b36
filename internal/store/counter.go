package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"rollcall.app/bot/core/db"
	"rollcall.app/bot/internal/model"
)

type pgCounterStore struct {
	q db.Querier
}

func (s *pgCounterStore) GetOrCreate(ctx context.Context, chatID int64, date string) (*model.CheckinState, error) {
	// The no-op DO UPDATE makes the upsert return the row in both the
	// insert and the conflict case.
	var st model.CheckinState
	err := s.q.QueryRow(ctx,
		`INSERT INTO checkin_states (chat_id, date)
		 VALUES ($1, $2)
		 ON CONFLICT (chat_id, date) DO UPDATE SET chat_id = checkin_states.chat_id
		 RETURNING chat_id, date, reminder_count, last_reminder_at, completed_at`,
		chatID, date).
		Scan(&st.ChatID, &st.Date, &st.ReminderCount, &st.LastReminderAt, &st.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *pgCounterStore) Increment(ctx context.Context, chatID int64, date string, at time.Time) (int, error) {
	// Single-statement upsert-and-increment: two concurrent firings cannot
	// both observe the same pre-increment count.
	var count int
	err := s.q.QueryRow(ctx,
		`INSERT INTO checkin_states (chat_id, date, reminder_count, last_reminder_at)
		 VALUES ($1, $2, 1, $3)
		 ON CONFLICT (chat_id, date) DO UPDATE
		    SET reminder_count = checkin_states.reminder_count + 1,
		        last_reminder_at = $3
		 RETURNING reminder_count`,
		chatID, date, at).Scan(&count)
	return count, err
}

func (s *pgCounterStore) GetCount(ctx context.Context, chatID int64, date string) (int, error) {
	var count int
	err := s.q.QueryRow(ctx,
		`SELECT reminder_count FROM checkin_states WHERE chat_id = $1 AND date = $2`,
		chatID, date).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (s *pgCounterStore) Reset(ctx context.Context, chatID int64, date string) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM checkin_states WHERE chat_id = $1 AND date = $2`, chatID, date)
	return err
}

func (s *pgCounterStore) MarkCompleted(ctx context.Context, chatID int64, date string) (bool, error) {
	// Test-and-set in one statement: the conflict branch only updates when
	// the stamp is still empty, so exactly one caller sees an affected row.
	tag, err := s.q.Exec(ctx,
		`INSERT INTO checkin_states (chat_id, date, completed_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (chat_id, date) DO UPDATE SET completed_at = now()
		 WHERE checkin_states.completed_at IS NULL`,
		chatID, date)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pgCounterStore) LastReminderAt(ctx context.Context, chatID int64, date string) (*time.Time, error) {
	var at *time.Time
	err := s.q.QueryRow(ctx,
		`SELECT last_reminder_at FROM checkin_states WHERE chat_id = $1 AND date = $2`,
		chatID, date).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return at, nil
}
