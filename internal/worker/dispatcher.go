package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"rollcall.app/bot/common/logger"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/queue"
	"rollcall.app/bot/internal/service"
)

// Escalator mirrors service.EscalationService for the dispatch path.
type Escalator interface {
	RunOpening(ctx context.Context) error
	RunFollowUp(ctx context.Context) error
}

// Intaker mirrors service.IntakeService for the dispatch path.
type Intaker interface {
	Handle(ctx context.Context, params service.IntakeParams) (*service.IntakeResult, error)
}

// Dispatcher routes parsed stream messages to the matching service entry
// point. It holds no state of its own, so it is shared between the polling
// worker and the reclaimer.
type Dispatcher struct {
	escalation Escalator
	intake     Intaker
}

func NewDispatcher(escalation Escalator, intake Intaker) *Dispatcher {
	return &Dispatcher{escalation: escalation, intake: intake}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_event", trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	fields := logger.LogFields{
		MessageID: logger.Ptr(msg.ID),
		EventKind: logger.Ptr(string(msg.Kind)),
		Component: "worker.dispatcher",
	}
	if msg.ChatID != 0 {
		fields.ChatID = logger.Ptr(msg.ChatID)
	}
	ctx = logger.WithLogFields(ctx, fields)

	var err error
	switch msg.Kind {
	case model.KindOpeningTrigger:
		err = d.escalation.RunOpening(ctx)
	case model.KindFollowUpTrigger:
		err = d.escalation.RunFollowUp(ctx)
	case model.KindQualifyingMessage:
		params := service.IntakeParams{
			ChatID:    msg.ChatID,
			UserID:    msg.UserID,
			Handle:    msg.Handle,
			MessageID: msg.MessageID,
			Text:      msg.Text,
		}
		if msg.ObservedAt != 0 {
			params.At = time.Unix(msg.ObservedAt, 0)
		}
		_, err = d.intake.Handle(ctx, params)
	default:
		err = fmt.Errorf("unhandled event kind %q", msg.Kind)
	}

	if err != nil {
		sc.RecordError(err)
	}
	return err
}
