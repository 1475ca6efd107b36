package service

import (
	"context"

	"rollcall.app/bot/core/db"
	"rollcall.app/bot/internal/store"
)

// StoreProvider exposes the stores needed by a transactional operation.
type StoreProvider interface {
	Participants() store.ParticipantStore
	Ledger() store.LedgerStore
}

// TxRunner runs functions within a transaction and provides stores bound to
// that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.Querier) error {
		return fn(store.NewPostgres(q))
	})
}

type memTxRunner struct {
	stores store.Stores
}

// NewMemTxRunner builds a TxRunner for the in-memory backend. The memory
// stores mutate under their own locks, so the runner just hands the shared
// stores to the callback.
func NewMemTxRunner(stores store.Stores) TxRunner {
	return &memTxRunner{stores: stores}
}

func (r *memTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return fn(r.stores)
}
