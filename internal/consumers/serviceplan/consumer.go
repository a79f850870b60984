// Package serviceplan consumes direct services-plan updates made outside
// the care-plan cascade.
package serviceplan

import (
	"context"
	"fmt"

	"github.com/atriumcare/carecoord-backend/internal/consumers"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

const consumerName = "serviceplan"

// Consumer handles services-plan.updated events.
type Consumer struct {
	engine      consumers.Engine
	idempotency consumers.IdempotencyChecker
	logg        *logger.Logger
}

// NewConsumer builds the services-plan consumer.
func NewConsumer(engine consumers.Engine, idempotency consumers.IdempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if engine == nil {
		return nil, fmt.Errorf("notification engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{engine: engine, idempotency: idempotency, logg: logg}, nil
}

func (c *Consumer) Name() string {
	return consumerName
}

func (c *Consumer) Topics() []string {
	return []string{events.TopicServicesPlanUpdated}
}

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

	var event events.ServicesPlanUpdatedEvent
	if err := events.DecodePayload(envelope, &event); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}

	input := notifications.CreateInput{
		UserID:  event.PatientID,
		Type:    enums.NotificationTypeServicesPlanUpdated,
		Title:   "Services Plan Updated",
		Message: fmt.Sprintf("Your services plan %q is now %s.", event.Title, event.Status),
		Data: dbtypes.JSONMap{
			"servicePlanId": event.ServicePlanID.String(),
			"carePlanId":    event.CarePlanID.String(),
			"status":        string(event.Status),
		},
	}
	if err := consumers.Notify(ctx, c.engine, input); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}
	return nil
}
