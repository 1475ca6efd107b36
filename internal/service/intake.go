package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rollcall.app/bot/common/id"
	"rollcall.app/bot/common/logger"
	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/store"
)

const completionText = "Everyone has checked in for today. Nice work!"

// IntakeParams describes one qualifying message observed in a chat.
type IntakeParams struct {
	ChatID    int64
	UserID    int64
	Handle    string
	MessageID int64
	Text      string
	// At is when the message was observed. Zero means "now".
	At time.Time
}

// IntakeResult reports what the intake did with the message.
type IntakeResult struct {
	// Tracked is false when the sender is not an active participant of the
	// chat; such messages are dropped without side effects.
	Tracked bool
	// FirstResponse is true when this message's ledger insert landed, i.e. it
	// was the sender's first qualifying message of the day. Duplicate
	// deliveries of the same message see false here.
	FirstResponse bool
	// Completed is true when this message won the completion stamp for the
	// chat and day. At most one intake per key sees true, so the completion
	// announcement goes out at most once.
	Completed bool
}

// IntakeService turns qualifying messages into ledger entries.
type IntakeService interface {
	Handle(ctx context.Context, params IntakeParams) (*IntakeResult, error)
}

type intakeService struct {
	directory DirectoryService
	ledger    store.LedgerStore
	counters  store.CounterStore
	txRunner  TxRunner
	notifier  notify.Notifier
	cfg       config.CheckinConfig
	clock     clock.Clock
	logger    *slog.Logger
}

func NewIntakeService(
	directory DirectoryService,
	ledger store.LedgerStore,
	counters store.CounterStore,
	txRunner TxRunner,
	notifier notify.Notifier,
	cfg config.CheckinConfig,
	clk clock.Clock,
	logger *slog.Logger,
) IntakeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &intakeService{
		directory: directory,
		ledger:    ledger,
		counters:  counters,
		txRunner:  txRunner,
		notifier:  notifier,
		cfg:       cfg,
		clock:     clk,
		logger:    logger,
	}
}

func (s *intakeService) Handle(ctx context.Context, params IntakeParams) (*IntakeResult, error) {
	if params.ChatID == 0 || params.UserID == 0 {
		return nil, fmt.Errorf("chat_id and user_id are required")
	}

	at := params.At
	if at.IsZero() {
		at = s.clock.Now()
	}
	date := clock.DayKey(at, s.cfg.Location())

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ChatID:    logger.Ptr(params.ChatID),
		UserID:    logger.Ptr(params.UserID),
		Date:      logger.Ptr(date),
		Component: "intake",
	})

	tracked, err := s.directory.IsTracked(ctx, params.ChatID, params.UserID)
	if err != nil {
		return nil, err
	}
	if !tracked {
		s.logger.DebugContext(ctx, "message from untracked sender ignored")
		return &IntakeResult{}, nil
	}

	// The handle refresh and the response row commit together, so a crash
	// between them cannot record a response under a stale handle. First-ness
	// is the ledger insert itself: Record is a set-add, so two concurrent
	// deliveries of the same message agree on which one landed.
	var inserted bool
	if err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		p := &model.Participant{
			ID:     id.New(),
			ChatID: params.ChatID,
			UserID: params.UserID,
			Handle: params.Handle,
		}
		if err := sp.Participants().Upsert(ctx, p); err != nil {
			return fmt.Errorf("refreshing participant: %w", err)
		}

		resp := &model.Response{
			ID:        id.New(),
			ChatID:    params.ChatID,
			UserID:    params.UserID,
			Date:      date,
			MessageID: params.MessageID,
			Text:      params.Text,
		}
		var err error
		if inserted, err = sp.Ledger().Record(ctx, resp); err != nil {
			return fmt.Errorf("recording response: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	result := &IntakeResult{Tracked: true, FirstResponse: inserted}
	if !inserted {
		s.logger.DebugContext(ctx, "repeat response ignored")
		return result, nil
	}

	completed, err := s.chatCompleted(ctx, params.ChatID, date)
	if err != nil {
		// The response is committed; completion is an announcement concern.
		s.logger.ErrorContext(ctx, "completion check failed", "error", err)
		return result, nil
	}
	if completed {
		// Several responses can observe the completed roster when they land
		// close together; the stamp picks the single announcer.
		won, err := s.counters.MarkCompleted(ctx, params.ChatID, date)
		if err != nil {
			s.logger.ErrorContext(ctx, "marking completion failed", "error", err)
		} else if won {
			result.Completed = true
			if err := s.notifier.Send(ctx, params.ChatID, completionText, notify.SendOptions{}); err != nil {
				s.logger.ErrorContext(ctx, "sending completion announcement failed", "error", err)
			} else {
				s.logger.InfoContext(ctx, "chat fully responded")
			}
		}
	}

	s.logger.InfoContext(ctx, "response recorded", "completed", result.Completed)
	return result, nil
}

// chatCompleted reports whether every currently tracked participant of the
// chat has responded for the date. The check runs against the current roster,
// so deactivating a silent participant can complete the day retroactively.
func (s *intakeService) chatCompleted(ctx context.Context, chatID int64, date string) (bool, error) {
	members, err := s.directory.ListTracked(ctx, chatID)
	if err != nil {
		return false, err
	}
	if len(members) == 0 {
		return false, nil
	}

	trackedIDs := make([]int64, len(members))
	for i, p := range members {
		trackedIDs[i] = p.UserID
	}
	unresponded, err := s.ledger.GetUnresponded(ctx, chatID, date, trackedIDs)
	if err != nil {
		return false, err
	}
	return len(unresponded) == 0, nil
}
