package service

import (
	"log/slog"

	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/store"
)

type Services struct {
	stores   store.Stores
	txRunner TxRunner
	notifier notify.Notifier
	cfg      config.CheckinConfig
	clock    clock.Clock
	logger   *slog.Logger
}

func NewServices(stores store.Stores, txRunner TxRunner, notifier notify.Notifier, cfg config.CheckinConfig, clk clock.Clock, logger *slog.Logger) *Services {
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		notifier: notifier,
		cfg:      cfg,
		clock:    clk,
		logger:   logger,
	}
}

func (s *Services) Directory() DirectoryService {
	return NewDirectoryService(s.stores.Participants())
}

func (s *Services) Escalation() EscalationService {
	return NewEscalationService(s.Directory(), s.stores.Ledger(), s.stores.Counters(), s.notifier, s.cfg, s.clock, s.logger)
}

func (s *Services) Intake() IntakeService {
	return NewIntakeService(s.Directory(), s.stores.Ledger(), s.stores.Counters(), s.txRunner, s.notifier, s.cfg, s.clock, s.logger)
}
