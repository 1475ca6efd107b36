package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rollcall.app/bot/core/db"
	"rollcall.app/bot/internal/model"
)

type pgParticipantStore struct {
	q db.Querier
}

func (s *pgParticipantStore) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.q.Query(ctx,
		`SELECT DISTINCT chat_id FROM participants WHERE active ORDER BY chat_id`)
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

func (s *pgParticipantStore) ListActiveByChat(ctx context.Context, chatID int64) ([]model.Participant, error) {
	// Snowflake ids are time-ordered, so ordering by id gives a stable
	// insertion-order enumeration.
	rows, err := s.q.Query(ctx,
		`SELECT id, chat_id, user_id, handle, active, created_at, updated_at
		   FROM participants
		  WHERE chat_id = $1 AND active
		  ORDER BY id`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.ChatID, &p.UserID, &p.Handle, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgParticipantStore) Get(ctx context.Context, chatID, userID int64) (*model.Participant, error) {
	var p model.Participant
	err := s.q.QueryRow(ctx,
		`SELECT id, chat_id, user_id, handle, active, created_at, updated_at
		   FROM participants
		  WHERE chat_id = $1 AND user_id = $2`, chatID, userID).
		Scan(&p.ID, &p.ChatID, &p.UserID, &p.Handle, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *pgParticipantStore) Upsert(ctx context.Context, p *model.Participant) error {
	row := s.q.QueryRow(ctx,
		`INSERT INTO participants (id, chat_id, user_id, handle, active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 ON CONFLICT (chat_id, user_id) DO UPDATE
		    SET handle = EXCLUDED.handle, active = TRUE, updated_at = now()
		 RETURNING id, chat_id, user_id, handle, active, created_at, updated_at`,
		p.ID, p.ChatID, p.UserID, p.Handle)
	return row.Scan(&p.ID, &p.ChatID, &p.UserID, &p.Handle, &p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (s *pgParticipantStore) Deactivate(ctx context.Context, chatID, userID int64) error {
	_, err := s.q.Exec(ctx,
		`UPDATE participants SET active = FALSE, updated_at = now()
		  WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	return err
}
