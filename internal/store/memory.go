package store

import (
	"context"
	"sync"
	"time"

	"rollcall.app/bot/internal/model"
)

// NewMemory returns Stores holding all state in process memory. Suitable for
// single-instance deployments and tests; a restart loses the day's state, in
// which case the defensive reset at the next opening trigger gives the day a
// clean start.
func NewMemory() Stores {
	return &memStores{
		participants: &memParticipantStore{
			byChat: make(map[int64][]*model.Participant),
		},
		ledger: &memLedgerStore{
			responded: make(map[dayKey]map[int64]struct{}),
			responses: make(map[dayKey][]model.Response),
		},
		counters: &memCounterStore{
			states: make(map[dayKey]*model.CheckinState),
		},
	}
}

type dayKey struct {
	chatID int64
	date   string
}

type memStores struct {
	participants *memParticipantStore
	ledger       *memLedgerStore
	counters     *memCounterStore
}

func (s *memStores) Participants() ParticipantStore { return s.participants }
func (s *memStores) Ledger() LedgerStore            { return s.ledger }
func (s *memStores) Counters() CounterStore         { return s.counters }

// --- Participants -----------------------------------------------------------

type memParticipantStore struct {
	mu     sync.RWMutex
	byChat map[int64][]*model.Participant // insertion order per chat
}

func (s *memParticipantStore) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for chatID, members := range s.byChat {
		for _, p := range members {
			if p.Active {
				ids = append(ids, chatID)
				break
			}
		}
	}
	return ids, nil
}

func (s *memParticipantStore) ListActiveByChat(ctx context.Context, chatID int64) ([]model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Participant
	for _, p := range s.byChat[chatID] {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memParticipantStore) Get(ctx context.Context, chatID, userID int64) (*model.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byChat[chatID] {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memParticipantStore) Upsert(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, existing := range s.byChat[p.ChatID] {
		if existing.UserID == p.UserID {
			existing.Handle = p.Handle
			existing.Active = true
			existing.UpdatedAt = now
			*p = *existing
			return nil
		}
	}

	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.byChat[p.ChatID] = append(s.byChat[p.ChatID], &cp)
	return nil
}

func (s *memParticipantStore) Deactivate(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.byChat[chatID] {
		if p.UserID == userID {
			p.Active = false
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

// --- Ledger -----------------------------------------------------------------

type memLedgerStore struct {
	mu        sync.RWMutex
	responded map[dayKey]map[int64]struct{}
	responses map[dayKey][]model.Response
}

func (s *memLedgerStore) Record(ctx context.Context, resp *model.Response) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{chatID: resp.ChatID, date: resp.Date}
	if s.responded[key] == nil {
		s.responded[key] = make(map[int64]struct{})
	}
	if _, ok := s.responded[key][resp.UserID]; ok {
		return false, nil
	}
	s.responded[key][resp.UserID] = struct{}{}

	resp.CreatedAt = time.Now()
	s.responses[key] = append(s.responses[key], *resp)
	return true, nil
}

func (s *memLedgerStore) HasResponded(ctx context.Context, chatID int64, date string, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.responded[dayKey{chatID: chatID, date: date}][userID]
	return ok, nil
}

func (s *memLedgerStore) GetResponded(ctx context.Context, chatID int64, date string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.responded[dayKey{chatID: chatID, date: date}]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memLedgerStore) GetUnresponded(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
	responded, err := s.GetResponded(ctx, chatID, date)
	if err != nil {
		return nil, err
	}
	return diffOrdered(trackedIDs, responded), nil
}

func (s *memLedgerStore) ResetDay(ctx context.Context, chatID int64, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{chatID: chatID, date: date}
	delete(s.responded, key)
	delete(s.responses, key)
	return nil
}

// --- Counters ---------------------------------------------------------------

type memCounterStore struct {
	mu     sync.Mutex
	states map[dayKey]*model.CheckinState
}

func (s *memCounterStore) getOrCreateLocked(chatID int64, date string) *model.CheckinState {
	key := dayKey{chatID: chatID, date: date}
	st, ok := s.states[key]
	if !ok {
		st = &model.CheckinState{ChatID: chatID, Date: date}
		s.states[key] = st
	}
	return st
}

func (s *memCounterStore) GetOrCreate(ctx context.Context, chatID int64, date string) (*model.CheckinState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.getOrCreateLocked(chatID, date)
	return &cp, nil
}

func (s *memCounterStore) Increment(ctx context.Context, chatID int64, date string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, date)
	st.ReminderCount++
	st.LastReminderAt = &at
	return st.ReminderCount, nil
}

func (s *memCounterStore) GetCount(ctx context.Context, chatID int64, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[dayKey{chatID: chatID, date: date}]; ok {
		return st.ReminderCount, nil
	}
	return 0, nil
}

func (s *memCounterStore) Reset(ctx context.Context, chatID int64, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, dayKey{chatID: chatID, date: date})
	return nil
}

func (s *memCounterStore) MarkCompleted(ctx context.Context, chatID int64, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, date)
	if st.CompletedAt != nil {
		return false, nil
	}
	now := time.Now()
	st.CompletedAt = &now
	return true, nil
}

func (s *memCounterStore) LastReminderAt(ctx context.Context, chatID int64, date string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[dayKey{chatID: chatID, date: date}]; ok {
		return st.LastReminderAt, nil
	}
	return nil, nil
}
