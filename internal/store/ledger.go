package store

import (
	"context"

	"rollcall.app/bot/core/db"
	"rollcall.app/bot/internal/model"
)

type pgLedgerStore struct {
	q db.Querier
}

func (s *pgLedgerStore) Record(ctx context.Context, resp *model.Response) (bool, error) {
	// The set-add and the first-response decision are the same statement:
	// under concurrent duplicate deliveries exactly one insert lands.
	tag, err := s.q.Exec(ctx,
		`INSERT INTO responses (id, chat_id, user_id, date, message_id, text)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (chat_id, date, user_id) DO NOTHING`,
		resp.ID, resp.ChatID, resp.UserID, resp.Date, resp.MessageID, resp.Text)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pgLedgerStore) HasResponded(ctx context.Context, chatID int64, date string, userID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM responses WHERE chat_id = $1 AND date = $2 AND user_id = $3
		 )`, chatID, date, userID).Scan(&exists)
	return exists, err
}

func (s *pgLedgerStore) GetResponded(ctx context.Context, chatID int64, date string) ([]int64, error) {
	rows, err := s.q.Query(ctx,
		`SELECT DISTINCT user_id FROM responses WHERE chat_id = $1 AND date = $2`,
		chatID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *pgLedgerStore) GetUnresponded(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
	responded, err := s.GetResponded(ctx, chatID, date)
	if err != nil {
		return nil, err
	}
	return diffOrdered(trackedIDs, responded), nil
}

func (s *pgLedgerStore) ResetDay(ctx context.Context, chatID int64, date string) error {
	_, err := s.q.Exec(ctx,
		`DELETE FROM responses WHERE chat_id = $1 AND date = $2`, chatID, date)
	return err
}
