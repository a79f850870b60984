// Package auth consumes account security events.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/atriumcare/carecoord-backend/internal/consumers"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

const consumerName = "auth"

// Consumer handles auth.password-reset and auth.login-alert events.
type Consumer struct {
	engine      consumers.Engine
	idempotency consumers.IdempotencyChecker
	logg        *logger.Logger
}

// NewConsumer builds the auth consumer.
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
	return []string{events.TopicAuthPasswordReset, events.TopicAuthLoginAlert}
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

	input, err := c.buildInput(msg.Topic, envelope)
	if err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}

	if err := consumers.Notify(ctx, c.engine, input); err != nil {
		consumers.Release(ctx, c.idempotency, consumerName, envelope)
		return err
	}
	return nil
}

func (c *Consumer) buildInput(topic string, envelope *events.Envelope) (notifications.CreateInput, error) {
	switch topic {
	case events.TopicAuthPasswordReset:
		var event events.PasswordResetEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return notifications.CreateInput{}, err
		}
		// Password resets go out over email too: the user may be locked
		// out of the app entirely.
		return notifications.CreateInput{
			UserID:   event.UserID,
			Type:     enums.NotificationTypePasswordReset,
			Title:    "Password Reset Requested",
			Message:  "A password reset was requested for your account. If this was not you, contact support immediately.",
			Channels: []enums.Channel{enums.ChannelInApp, enums.ChannelEmail},
			Data: dbtypes.JSONMap{
				"requestedAt": event.RequestedAt.UTC().Format(time.RFC3339),
			},
		}, nil

	case events.TopicAuthLoginAlert:
		var event events.LoginAlertEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return notifications.CreateInput{}, err
		}
		message := "A sign-in to your account was detected from a new device or location."
		data := dbtypes.JSONMap{}
		if event.IP != "" {
			data["ip"] = event.IP
		}
		if event.UserAgent != "" {
			data["userAgent"] = event.UserAgent
		}
		return notifications.CreateInput{
			UserID:  event.UserID,
			Type:    enums.NotificationTypeSecurityAlert,
			Title:   "New Sign-In Detected",
			Message: message,
			Data:    data,
		}, nil

	default:
		return notifications.CreateInput{}, fmt.Errorf("unexpected topic %q", topic)
	}
}
