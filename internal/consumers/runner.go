// Package consumers holds the domain event consumers and the runner that
// binds them to bus subscriptions. One bad event never halts a subscriber:
// handler errors are logged, counted, and swallowed.
package consumers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/internal/delivery"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
	"github.com/atriumcare/carecoord-backend/pkg/metrics"
)

// Engine is the slice of the notification service the consumers drive.
type Engine interface {
	Create(ctx context.Context, input notifications.CreateInput) (*models.Notification, error)
	Send(ctx context.Context, notification *models.Notification) ([]delivery.Result, error)
	ApplyDeliveryOutcome(ctx context.Context, notification *models.Notification, results []delivery.Result) error
}

// IdempotencyChecker guards against duplicate event delivery.
type IdempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// ErrSkip signals that the handler deliberately did not act on the event
// (duplicate, unknown subtype). The runner counts it as skipped, not failed.
var ErrSkip = fmt.Errorf("event skipped")

// Handler is one domain consumer.
type Handler interface {
	Name() string
	Topics() []string
	Process(ctx context.Context, msg bus.Message) error
}

type subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (*bus.Subscription, error)
}

// Runner subscribes handlers to their topics and pumps messages through
// them with the log-count-and-continue policy.
type Runner struct {
	bus     subscriber
	logg    *logger.Logger
	metrics *metrics.ConsumerMetrics
}

// NewRunner builds a consumer runner.
func NewRunner(b subscriber, logg *logger.Logger, m *metrics.ConsumerMetrics) (*Runner, error) {
	if b == nil {
		return nil, fmt.Errorf("bus required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Runner{bus: b, logg: logg, metrics: m}, nil
}

// Run blocks pumping the handler's subscription until ctx is canceled.
func (r *Runner) Run(ctx context.Context, handler Handler) error {
	sub, err := r.bus.Subscribe(ctx, handler.Topics()...)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", handler.Name(), err)
	}
	defer func() { _ = sub.Close() }()

	ctx = r.logg.WithConsumer(ctx, handler.Name())
	r.logg.Info(ctx, "consumer started")

	return sub.Receive(ctx, func(ctx context.Context, msg bus.Message) {
		r.Dispatch(ctx, handler, msg)
	})
}

// Dispatch feeds one message through the handler and records the outcome.
// Errors never escape: a poison message must not crash the loop.
func (r *Runner) Dispatch(ctx context.Context, handler Handler, msg bus.Message) {
	ctx = r.logg.WithConsumer(ctx, handler.Name())
	ctx = r.logg.WithTopic(ctx, msg.Topic)

	err := handler.Process(ctx, msg)
	switch {
	case err == nil:
		r.metrics.IncProcessed(handler.Name())
	case err == ErrSkip:
		r.metrics.IncSkipped(handler.Name())
	default:
		r.metrics.IncFailed(handler.Name())
		r.logg.Error(ctx, "event processing failed", err)
	}
}

// Dedupe runs the idempotency check shared by every consumer. It returns
// true when the event was already processed.
func Dedupe(ctx context.Context, checker IdempotencyChecker, consumer string, envelope *events.Envelope) (bool, error) {
	if checker == nil {
		return false, nil
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return false, fmt.Errorf("parse event id: %w", err)
	}
	already, err := checker.CheckAndMarkProcessed(ctx, consumer, eventID)
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	return already, nil
}

// Release undoes the idempotency mark after a handler failure so a
// redelivery can retry the event.
func Release(ctx context.Context, checker IdempotencyChecker, consumer string, envelope *events.Envelope) {
	if checker == nil {
		return
	}
	if eventID, err := uuid.Parse(envelope.EventID); err == nil {
		_ = checker.Delete(ctx, consumer, eventID)
	}
}

// Notify runs the create, send, apply-outcome sequence shared by every
// consumer that produces a notification.
func Notify(ctx context.Context, engine Engine, input notifications.CreateInput) error {
	notification, err := engine.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	results, err := engine.Send(ctx, notification)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if err := engine.ApplyDeliveryOutcome(ctx, notification, results); err != nil {
		return fmt.Errorf("record delivery outcome: %w", err)
	}
	return nil
}
