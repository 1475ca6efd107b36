package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"

	"rollcall.app/bot/common/logger"
	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
)

// Scheduler fires the opening and follow-up triggers on the configured cron
// schedule. Jobs only enqueue events; the worker owns all processing, so a
// slow chat walk can never delay the next firing.
type Scheduler struct {
	cron     *cron.Cron
	producer queue.Producer
	logger   *slog.Logger
}

func New(cfg config.CheckinConfig, producer queue.Producer, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location())),
		producer: producer,
		logger:   log,
	}

	if err := s.AddJob(cfg.OpeningCron, "opening", s.enqueueTrigger(model.KindOpeningTrigger)); err != nil {
		return nil, err
	}
	if err := s.AddJob(cfg.FollowUpCron, "follow-up", s.enqueueTrigger(model.KindFollowUpTrigger)); err != nil {
		return nil, err
	}

	return s, nil
}

// AddJob registers a named job on a standard 5-field cron spec, evaluated in
// the scheduler's location.
func (s *Scheduler) AddJob(spec, name string, fn func(ctx context.Context)) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			Component: "scheduler",
		})
		s.logger.InfoContext(ctx, "cron job firing", "job", name)
		fn(ctx)
	}); err != nil {
		return fmt.Errorf("registering %s job (%q): %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) enqueueTrigger(kind model.EventKind) func(ctx context.Context) {
	return func(ctx context.Context) {
		sc := logger.StartSpan(ctx, "scheduler.enqueue_trigger", trace.WithSpanKind(trace.SpanKindProducer))
		defer sc.End()
		ctx = sc.Context()

		msg := queue.EventMessage{Kind: kind}
		if traceID := sc.Span().SpanContext().TraceID(); traceID.IsValid() {
			msg.TraceID = logger.Ptr(traceID.String())
		}

		if err := s.producer.Enqueue(ctx, msg); err != nil {
			sc.RecordError(err)
			s.logger.ErrorContext(ctx, "failed to enqueue trigger", "kind", kind, "error", err)
		}
	}
}

// Start begins firing jobs. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
