// Package careplan consumes care-plan lifecycle events. Besides notifying
// the patient it owns one contracted side effect: cascading the parent
// status change into the plan's services plans.
package careplan

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/internal/consumers"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

const consumerName = "careplan"

type servicePlanCascader interface {
	CascadeCarePlanStatus(ctx context.Context, carePlanID uuid.UUID, parentStatus enums.CarePlanStatus) (int64, error)
}

// Consumer handles care-plan.approved and care-plan.status-changed events.
type Consumer struct {
	engine       consumers.Engine
	idempotency  consumers.IdempotencyChecker
	servicePlans servicePlanCascader
	logg         *logger.Logger
}

// NewConsumer builds the care-plan consumer.
func NewConsumer(engine consumers.Engine, idempotency consumers.IdempotencyChecker, servicePlans servicePlanCascader, logg *logger.Logger) (*Consumer, error) {
	if engine == nil {
		return nil, fmt.Errorf("notification engine required")
	}
	if servicePlans == nil {
		return nil, fmt.Errorf("service plan repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{engine: engine, idempotency: idempotency, servicePlans: servicePlans, logg: logg}, nil
}

func (c *Consumer) Name() string {
	return consumerName
}

func (c *Consumer) Topics() []string {
	return []string{events.TopicCarePlanApproved, events.TopicCarePlanStatusChanged}
}

// Process decodes the event, applies the services-plan cascade, and
// notifies the patient.
func (c *Consumer) Process(ctx context.Context, msg bus.Message) error {
	envelope, err := events.ParseEnvelope(msg.Payload)
	if err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}

	already, err := consumers.Dedupe(ctx, c.idempotency, consumerName, envelope)
	if err != nil {
		return err
	}
	if already {
		return consumers.ErrSkip
	}

	var event events.CarePlanStatusChangedEvent
	if err := events.DecodePayload(envelope, &event); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}
	if !event.Status.IsValid() {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return fmt.Errorf("unknown care plan status %q", event.Status)
	}

	if err := c.handle(ctx, event); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, event events.CarePlanStatusChangedEvent) error {
	changed, err := c.servicePlans.CascadeCarePlanStatus(ctx, event.CarePlanID, event.Status)
	if err != nil {
		return fmt.Errorf("cascade service plans: %w", err)
	}
	if changed > 0 {
		logCtx := c.logg.WithField(ctx, "care_plan_id", event.CarePlanID.String())
		logCtx = c.logg.WithField(logCtx, "service_plans_changed", changed)
		c.logg.Info(logCtx, "service plan statuses cascaded")
	}

	return consumers.Notify(ctx, c.engine, buildInput(event))
}

func buildInput(event events.CarePlanStatusChangedEvent) notifications.CreateInput {
	title := fmt.Sprintf("Care Plan %s", statusLabel(event.Status))
	message := fmt.Sprintf("Your care plan %q is now %s.", event.Title, statusLabel(event.Status))

	notifType := enums.NotificationTypeCarePlanUpdated
	if event.Status == enums.CarePlanStatusApproved {
		notifType = enums.NotificationTypeCarePlanApproved
		title = "Care Plan Approved"
		message = fmt.Sprintf("Your care plan %q has been approved.", event.Title)
	}

	data := dbtypes.JSONMap{
		"carePlanId": event.CarePlanID.String(),
		"status":     string(event.Status),
	}
	if event.ApprovedBy != nil {
		data["approvedBy"] = event.ApprovedBy.String()
	}

	return notifications.CreateInput{
		UserID:  event.PatientID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
}

func statusLabel(status enums.CarePlanStatus) string {
	switch status {
	case enums.CarePlanStatusDraft:
		return "Draft"
	case enums.CarePlanStatusInReview:
		return "In Review"
	case enums.CarePlanStatusApproved:
		return "Approved"
	case enums.CarePlanStatusActive:
		return "Active"
	case enums.CarePlanStatusCompleted:
		return "Completed"
	case enums.CarePlanStatusCancelled:
		return "Cancelled"
	default:
		return string(status)
	}
}
