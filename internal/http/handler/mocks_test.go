package handler_test

import (
	"context"
	"time"

	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
	"rollcall.app/bot/internal/store"
)

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.EventMessage) error
	enqueued  []queue.EventMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.EventMessage) error {
	m.enqueued = append(m.enqueued, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

type mockDirectory struct {
	listTrackedFn func(ctx context.Context, chatID int64) ([]model.Participant, error)
}

func (m *mockDirectory) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func (m *mockDirectory) ListTracked(ctx context.Context, chatID int64) ([]model.Participant, error) {
	if m.listTrackedFn != nil {
		return m.listTrackedFn(ctx, chatID)
	}
	return nil, nil
}

func (m *mockDirectory) IsTracked(ctx context.Context, chatID, userID int64) (bool, error) {
	return false, nil
}

type mockLedgerStore struct {
	getRespondedFn   func(ctx context.Context, chatID int64, date string) ([]int64, error)
	getUnrespondedFn func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error)
}

func (m *mockLedgerStore) Record(ctx context.Context, resp *model.Response) (bool, error) {
	return true, nil
}

func (m *mockLedgerStore) HasResponded(ctx context.Context, chatID int64, date string, userID int64) (bool, error) {
	return false, nil
}

func (m *mockLedgerStore) GetResponded(ctx context.Context, chatID int64, date string) ([]int64, error) {
	if m.getRespondedFn != nil {
		return m.getRespondedFn(ctx, chatID, date)
	}
	return nil, nil
}

func (m *mockLedgerStore) GetUnresponded(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
	if m.getUnrespondedFn != nil {
		return m.getUnrespondedFn(ctx, chatID, date, trackedIDs)
	}
	return trackedIDs, nil
}

func (m *mockLedgerStore) ResetDay(ctx context.Context, chatID int64, date string) error { return nil }

type mockCounterStore struct {
	getOrCreateFn func(ctx context.Context, chatID int64, date string) (*model.CheckinState, error)
}

func (m *mockCounterStore) GetOrCreate(ctx context.Context, chatID int64, date string) (*model.CheckinState, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, chatID, date)
	}
	return &model.CheckinState{ChatID: chatID, Date: date}, nil
}

func (m *mockCounterStore) GetCount(ctx context.Context, chatID int64, date string) (int, error) {
	return 0, nil
}

func (m *mockCounterStore) Increment(ctx context.Context, chatID int64, date string, at time.Time) (int, error) {
	return 0, nil
}

func (m *mockCounterStore) Reset(ctx context.Context, chatID int64, date string) error { return nil }

func (m *mockCounterStore) MarkCompleted(ctx context.Context, chatID int64, date string) (bool, error) {
	return true, nil
}

func (m *mockCounterStore) LastReminderAt(ctx context.Context, chatID int64, date string) (*time.Time, error) {
	return nil, nil
}

var _ store.LedgerStore = (*mockLedgerStore)(nil)
var _ store.CounterStore = (*mockCounterStore)(nil)
