// Package provider consumes provider assignment and availability events.
// Availability changes produce no notification; they invalidate the cached
// availability snapshot so schedulers re-read it.
package provider

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

const consumerName = "provider"

type availabilityCache interface {
	AvailabilityKey(providerID string) string
	Del(ctx context.Context, keys ...string) error
}

// Consumer handles provider.assigned and provider.availability-changed
// events.
type Consumer struct {
	engine      consumers.Engine
	idempotency consumers.IdempotencyChecker
	cache       availabilityCache
	logg        *logger.Logger
}

// NewConsumer builds the provider consumer.
func NewConsumer(engine consumers.Engine, idempotency consumers.IdempotencyChecker, cache availabilityCache, logg *logger.Logger) (*Consumer, error) {
	if engine == nil {
		return nil, fmt.Errorf("notification engine required")
	}
	if cache == nil {
		return nil, fmt.Errorf("availability cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{engine: engine, idempotency: idempotency, cache: cache, logg: logg}, nil
}

func (c *Consumer) Name() string {
	return consumerName
}

func (c *Consumer) Topics() []string {
	return []string{events.TopicProviderAssigned, events.TopicProviderAvailabilityChanged}
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

	if err := c.handle(ctx, msg.Topic, envelope); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context, topic string, envelope *events.Envelope) error {
	switch topic {
	case events.TopicProviderAssigned:
		var event events.ProviderAssignedEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return err
		}

		message := fmt.Sprintf("%s has joined your care team.", event.ProviderName)
		if event.ServiceName != "" {
			message = fmt.Sprintf("%s has joined your care team for %s.", event.ProviderName, event.ServiceName)
		}
		return consumers.Notify(ctx, c.engine, notifications.CreateInput{
			UserID:  event.PatientID,
			Type:    enums.NotificationTypeProviderAssigned,
			Title:   "Provider Assigned",
			Message: message,
			Data: dbtypes.JSONMap{
				"providerId": event.ProviderID.String(),
			},
		})

	case events.TopicProviderAvailabilityChanged:
		var event events.ProviderAvailabilityChangedEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return err
		}

		key := c.cache.AvailabilityKey(event.ProviderID.String())
		if err := c.cache.Del(ctx, key); err != nil {
			return fmt.Errorf("invalidate availability cache: %w", err)
		}
		logCtx := c.logg.WithField(ctx, "provider_id", event.ProviderID.String())
		c.logg.Info(logCtx, "provider availability cache invalidated")
		return nil

	default:
		return fmt.Errorf("unexpected topic %q", topic)
	}
}
