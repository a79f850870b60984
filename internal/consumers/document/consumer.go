// Package document consumes document upload and analysis events.
package document

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

const consumerName = "document"

// Consumer handles document.uploaded and document.analyzed events.
type Consumer struct {
	engine      consumers.Engine
	idempotency consumers.IdempotencyChecker
	logg        *logger.Logger
}

// NewConsumer builds the document consumer.
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
	return []string{events.TopicDocumentUploaded, events.TopicDocumentAnalyzed}
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
	case events.TopicDocumentUploaded:
		var event events.DocumentUploadedEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return notifications.CreateInput{}, err
		}
		return notifications.CreateInput{
			UserID:  event.PatientID,
			Type:    enums.NotificationTypeDocumentUploaded,
			Title:   "New Document",
			Message: fmt.Sprintf("A new document %q was added to your record.", event.FileName),
			Data: dbtypes.JSONMap{
				"documentId": event.DocumentID.String(),
				"uploadedBy": event.UploadedBy.String(),
			},
		}, nil
	case events.TopicDocumentAnalyzed:
		var event events.DocumentAnalyzedEvent
		if err := events.DecodePayload(envelope, &event); err != nil {
			return notifications.CreateInput{}, err
		}
		message := fmt.Sprintf("Analysis of %q is complete.", event.FileName)
		if event.Summary != "" {
			message = fmt.Sprintf("Analysis of %q is complete: %s", event.FileName, event.Summary)
		}
		return notifications.CreateInput{
			UserID:  event.PatientID,
			Type:    enums.NotificationTypeDocumentAnalyzed,
			Title:   "Document Analysis Ready",
			Message: message,
			Data: dbtypes.JSONMap{
				"documentId": event.DocumentID.String(),
			},
		}, nil
	default:
		return notifications.CreateInput{}, fmt.Errorf("unexpected topic %q", topic)
	}
}
