package store

import (
	"rollcall.app/bot/core/db"
)

// Stores bundles the three data-access contracts behind a single provider so
// callers can be handed either backend, or a transaction-bound view.
type Stores interface {
	Participants() ParticipantStore
	Ledger() LedgerStore
	Counters() CounterStore
}

type pgStores struct {
	q db.Querier
}

// NewPostgres returns Stores backed by the given Querier. Passing a pgx
// transaction yields transaction-bound stores; passing the pool yields
// auto-commit stores.
func NewPostgres(q db.Querier) Stores {
	return &pgStores{q: q}
}

func (s *pgStores) Participants() ParticipantStore {
	return &pgParticipantStore{q: s.q}
}

func (s *pgStores) Ledger() LedgerStore {
	return &pgLedgerStore{q: s.q}
}

func (s *pgStores) Counters() CounterStore {
	return &pgCounterStore{q: s.q}
}
