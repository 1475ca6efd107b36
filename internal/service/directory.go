package service

import (
	"context"
	"errors"
	"fmt"

	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/store"
)

// DirectoryService answers who is tracked where. It is the only consumer of
// the participant store outside the intake transaction.
type DirectoryService interface {
	// ActiveChatIDs lists every chat with at least one active participant.
	ActiveChatIDs(ctx context.Context) ([]int64, error)
	// ListTracked returns the active participants of a chat in stable order.
	// Mention rendering keeps this order.
	ListTracked(ctx context.Context, chatID int64) ([]model.Participant, error)
	// IsTracked reports whether the user is an active participant of the chat.
	IsTracked(ctx context.Context, chatID, userID int64) (bool, error)
}

type directoryService struct {
	participants store.ParticipantStore
}

func NewDirectoryService(participants store.ParticipantStore) DirectoryService {
	return &directoryService{participants: participants}
}

func (s *directoryService) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.participants.ActiveChatIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked chats: %w", err)
	}
	return ids, nil
}

func (s *directoryService) ListTracked(ctx context.Context, chatID int64) ([]model.Participant, error) {
	members, err := s.participants.ListActiveByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("listing participants for chat %d: %w", chatID, err)
	}
	return members, nil
}

func (s *directoryService) IsTracked(ctx context.Context, chatID, userID int64) (bool, error) {
	p, err := s.participants.Get(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("fetching participant %d in chat %d: %w", userID, chatID, err)
	}
	return p.Active, nil
}
