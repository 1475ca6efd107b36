package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rollcall.app/bot/common/logger"
	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/store"
)

const (
	openingText  = "Good morning! What is everyone working on today? Reply in this chat to check in."
	followUpText = "%s, a reminder to share your check-in for today."
)

// EscalationService drives the daily prompt and follow-up reminders. Both
// entry points walk every tracked chat; a failure in one chat never blocks
// the rest.
type EscalationService interface {
	// RunOpening posts the day's opening prompt to every tracked chat and
	// consumes the first reminder slot.
	RunOpening(ctx context.Context) error
	// RunFollowUp mentions the participants that have not responded yet, in
	// every chat that is below the reminder cap and not yet fully responded.
	RunFollowUp(ctx context.Context) error
}

type escalationService struct {
	directory DirectoryService
	ledger    store.LedgerStore
	counters  store.CounterStore
	notifier  notify.Notifier
	cfg       config.CheckinConfig
	clock     clock.Clock
	logger    *slog.Logger
}

func NewEscalationService(
	directory DirectoryService,
	ledger store.LedgerStore,
	counters store.CounterStore,
	notifier notify.Notifier,
	cfg config.CheckinConfig,
	clk clock.Clock,
	logger *slog.Logger,
) EscalationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &escalationService{
		directory: directory,
		ledger:    ledger,
		counters:  counters,
		notifier:  notifier,
		cfg:       cfg,
		clock:     clk,
		logger:    logger,
	}
}

func (s *escalationService) RunOpening(ctx context.Context) error {
	return s.runAll(ctx, "opening", s.openChat)
}

func (s *escalationService) RunFollowUp(ctx context.Context) error {
	return s.runAll(ctx, "follow-up", s.remindChat)
}

// runAll fans a per-chat step across every tracked chat. Errors are logged
// per chat and the walk continues; only a directory failure aborts the run.
func (s *escalationService) runAll(ctx context.Context, kind string, step func(ctx context.Context, chatID int64, date string) error) error {
	now := s.clock.Now()
	date := clock.DayKey(now, s.cfg.Location())

	chats, err := s.directory.ActiveChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("%s run: %w", kind, err)
	}

	var failed int
	for _, chatID := range chats {
		chatCtx := logger.WithLogFields(ctx, logger.LogFields{
			ChatID:    logger.Ptr(chatID),
			Date:      logger.Ptr(date),
			Component: "escalation",
		})
		if err := step(chatCtx, chatID, date); err != nil {
			failed++
			s.logger.ErrorContext(chatCtx, kind+" step failed", "error", err)
		}
	}

	s.logger.InfoContext(ctx, kind+" run finished",
		"date", date,
		"chats", len(chats),
		"failed", failed)
	return nil
}

func (s *escalationService) openChat(ctx context.Context, chatID int64, date string) error {
	count, err := s.counters.GetCount(ctx, chatID, date)
	if err != nil {
		return fmt.Errorf("reading reminder count: %w", err)
	}

	// A zero count means the day has not started for this chat. Clear any
	// leftover rows under the same key so a redeploy or a manual reset cannot
	// leak yesterday's responses into today.
	if count == 0 {
		if err := s.ledger.ResetDay(ctx, chatID, date); err != nil {
			return fmt.Errorf("resetting ledger: %w", err)
		}
		if err := s.counters.Reset(ctx, chatID, date); err != nil {
			return fmt.Errorf("resetting counter: %w", err)
		}
	}

	if count >= s.cfg.ReminderCap {
		s.logger.DebugContext(ctx, "reminder cap reached, skipping opening", "count", count)
		return nil
	}

	sendErr := s.notifier.Send(ctx, chatID, openingText, notify.SendOptions{})
	if sendErr != nil && !s.cfg.CountFailedSends {
		return fmt.Errorf("sending opening prompt: %w", sendErr)
	}

	newCount, err := s.counters.Increment(ctx, chatID, date, s.clock.Now())
	if err != nil {
		return fmt.Errorf("incrementing reminder count: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("sending opening prompt (slot %d consumed): %w", newCount, sendErr)
	}

	s.logger.InfoContext(ctx, "opening prompt sent", "count", newCount)
	return nil
}

func (s *escalationService) remindChat(ctx context.Context, chatID int64, date string) error {
	// The cap gate runs before any participant lookup, so a capped chat costs
	// one counter read and nothing else. The read and the later Increment are
	// not atomic: two firings landing together at cap-1 can both pass the gate
	// and each send. Cron fires hours apart, so the window only opens on a
	// manual trigger racing the schedule, and the cost is one extra reminder.
	// Incrementing first would close it but would burn a slot even when the
	// roster check below decides nothing needs sending.
	count, err := s.counters.GetCount(ctx, chatID, date)
	if err != nil {
		return fmt.Errorf("reading reminder count: %w", err)
	}
	if count >= s.cfg.ReminderCap {
		s.logger.DebugContext(ctx, "reminder cap reached, skipping follow-up", "count", count)
		return nil
	}

	tracked, err := s.directory.ListTracked(ctx, chatID)
	if err != nil {
		return err
	}
	if len(tracked) == 0 {
		return nil
	}

	trackedIDs := make([]int64, len(tracked))
	handles := make(map[int64]string, len(tracked))
	for i, p := range tracked {
		trackedIDs[i] = p.UserID
		handles[p.UserID] = p.Handle
	}

	unresponded, err := s.ledger.GetUnresponded(ctx, chatID, date, trackedIDs)
	if err != nil {
		return fmt.Errorf("reading unresponded set: %w", err)
	}
	if len(unresponded) == 0 {
		s.logger.DebugContext(ctx, "all participants responded, skipping follow-up")
		return nil
	}

	mentions := make([]string, len(unresponded))
	for i, userID := range unresponded {
		mentions[i] = notify.Mention(userID, handles[userID])
	}
	text := fmt.Sprintf(followUpText, strings.Join(mentions, ", "))

	sendErr := s.notifier.Send(ctx, chatID, text, notify.SendOptions{Markdown: true})
	if sendErr != nil && !s.cfg.CountFailedSends {
		return fmt.Errorf("sending follow-up: %w", sendErr)
	}

	newCount, err := s.counters.Increment(ctx, chatID, date, s.clock.Now())
	if err != nil {
		return fmt.Errorf("incrementing reminder count: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("sending follow-up (slot %d consumed): %w", newCount, sendErr)
	}

	s.logger.InfoContext(ctx, "follow-up sent", "count", newCount, "pending", len(unresponded))
	return nil
}
