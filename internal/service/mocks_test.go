package service_test

import (
	"context"
	"time"

	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/service"
	"rollcall.app/bot/internal/store"
)

type mockParticipantStore struct {
	activeChatIDsFn    func(ctx context.Context) ([]int64, error)
	listActiveByChatFn func(ctx context.Context, chatID int64) ([]model.Participant, error)
	getFn              func(ctx context.Context, chatID, userID int64) (*model.Participant, error)
	upsertFn           func(ctx context.Context, p *model.Participant) error

	listCalls   int
	upsertCalls int
}

func (m *mockParticipantStore) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	if m.activeChatIDsFn != nil {
		return m.activeChatIDsFn(ctx)
	}
	return nil, nil
}

func (m *mockParticipantStore) ListActiveByChat(ctx context.Context, chatID int64) ([]model.Participant, error) {
	m.listCalls++
	if m.listActiveByChatFn != nil {
		return m.listActiveByChatFn(ctx, chatID)
	}
	return nil, nil
}

func (m *mockParticipantStore) Get(ctx context.Context, chatID, userID int64) (*model.Participant, error) {
	if m.getFn != nil {
		return m.getFn(ctx, chatID, userID)
	}
	return nil, store.ErrNotFound
}

func (m *mockParticipantStore) Upsert(ctx context.Context, p *model.Participant) error {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(ctx, p)
	}
	return nil
}

func (m *mockParticipantStore) Deactivate(ctx context.Context, chatID, userID int64) error {
	return nil
}

type mockLedgerStore struct {
	recordFn         func(ctx context.Context, resp *model.Response) (bool, error)
	hasRespondedFn   func(ctx context.Context, chatID int64, date string, userID int64) (bool, error)
	getRespondedFn   func(ctx context.Context, chatID int64, date string) ([]int64, error)
	getUnrespondedFn func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error)
	resetDayFn       func(ctx context.Context, chatID int64, date string) error

	recordedResponses []*model.Response
	seen              map[dayUserKey]struct{}
	resetCalls        int
}

type dayUserKey struct {
	chatID int64
	date   string
	userID int64
}

func (m *mockLedgerStore) Record(ctx context.Context, resp *model.Response) (bool, error) {
	if m.recordFn != nil {
		return m.recordFn(ctx, resp)
	}
	key := dayUserKey{chatID: resp.ChatID, date: resp.Date, userID: resp.UserID}
	if m.seen == nil {
		m.seen = make(map[dayUserKey]struct{})
	}
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = struct{}{}
	m.recordedResponses = append(m.recordedResponses, resp)
	return true, nil
}

func (m *mockLedgerStore) HasResponded(ctx context.Context, chatID int64, date string, userID int64) (bool, error) {
	if m.hasRespondedFn != nil {
		return m.hasRespondedFn(ctx, chatID, date, userID)
	}
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

func (m *mockLedgerStore) ResetDay(ctx context.Context, chatID int64, date string) error {
	m.resetCalls++
	if m.resetDayFn != nil {
		return m.resetDayFn(ctx, chatID, date)
	}
	return nil
}

type mockCounterStore struct {
	getCountFn  func(ctx context.Context, chatID int64, date string) (int, error)
	incrementFn func(ctx context.Context, chatID int64, date string, at time.Time) (int, error)
	resetFn     func(ctx context.Context, chatID int64, date string) error

	counts             map[int64]int
	completed          map[int64]bool
	incrementCalls     int
	resetCalls         int
	markCompletedCalls int
}

func (m *mockCounterStore) GetOrCreate(ctx context.Context, chatID int64, date string) (*model.CheckinState, error) {
	return &model.CheckinState{ChatID: chatID, Date: date, ReminderCount: m.counts[chatID]}, nil
}

func (m *mockCounterStore) GetCount(ctx context.Context, chatID int64, date string) (int, error) {
	if m.getCountFn != nil {
		return m.getCountFn(ctx, chatID, date)
	}
	return m.counts[chatID], nil
}

func (m *mockCounterStore) Increment(ctx context.Context, chatID int64, date string, at time.Time) (int, error) {
	m.incrementCalls++
	if m.incrementFn != nil {
		return m.incrementFn(ctx, chatID, date, at)
	}
	if m.counts == nil {
		m.counts = make(map[int64]int)
	}
	m.counts[chatID]++
	return m.counts[chatID], nil
}

func (m *mockCounterStore) Reset(ctx context.Context, chatID int64, date string) error {
	m.resetCalls++
	if m.resetFn != nil {
		return m.resetFn(ctx, chatID, date)
	}
	delete(m.counts, chatID)
	delete(m.completed, chatID)
	return nil
}

func (m *mockCounterStore) LastReminderAt(ctx context.Context, chatID int64, date string) (*time.Time, error) {
	return nil, nil
}

func (m *mockCounterStore) MarkCompleted(ctx context.Context, chatID int64, date string) (bool, error) {
	m.markCompletedCalls++
	if m.completed == nil {
		m.completed = make(map[int64]bool)
	}
	if m.completed[chatID] {
		return false, nil
	}
	m.completed[chatID] = true
	return true, nil
}

type sentMessage struct {
	chatID int64
	text   string
	opts   notify.SendOptions
}

type mockNotifier struct {
	sendFn func(ctx context.Context, chatID int64, text string, opts notify.SendOptions) error
	sent   []sentMessage
}

func (m *mockNotifier) Send(ctx context.Context, chatID int64, text string, opts notify.SendOptions) error {
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text, opts: opts})
	if m.sendFn != nil {
		return m.sendFn(ctx, chatID, text, opts)
	}
	return nil
}

type mockStoreProvider struct {
	participants *mockParticipantStore
	ledger       *mockLedgerStore
}

func (m *mockStoreProvider) Participants() store.ParticipantStore { return m.participants }
func (m *mockStoreProvider) Ledger() store.LedgerStore            { return m.ledger }

type mockTxRunner struct {
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return nil
}
