package document

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumcare/carecoord-backend/internal/delivery"
	"github.com/atriumcare/carecoord-backend/internal/notifications"
	"github.com/atriumcare/carecoord-backend/pkg/bus"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

type fakeEngine struct {
	created []notifications.CreateInput
}

func (f *fakeEngine) Create(_ context.Context, input notifications.CreateInput) (*models.Notification, error) {
	f.created = append(f.created, input)
	return &models.Notification{UserID: input.UserID, Type: input.Type}, nil
}

func (f *fakeEngine) Send(_ context.Context, _ *models.Notification) ([]delivery.Result, error) {
	return nil, nil
}

func (f *fakeEngine) ApplyDeliveryOutcome(_ context.Context, _ *models.Notification, _ []delivery.Result) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func envelopeBytes(t *testing.T, payload any) []byte {
	t.Helper()
	envelope, err := events.NewEnvelope(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return raw
}

func TestProcessUploadedNotifiesPatient(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	consumer, err := NewConsumer(engine, nil, testLogger())
	require.NoError(t, err)

	event := events.DocumentUploadedEvent{
		DocumentID: uuid.New(),
		PatientID:  uuid.New(),
		FileName:   "labs-2025-08.pdf",
		UploadedBy: uuid.New(),
	}
	msg := bus.Message{Topic: events.TopicDocumentUploaded, Payload: envelopeBytes(t, event)}

	require.NoError(t, consumer.Process(context.Background(), msg))

	require.Len(t, engine.created, 1)
	input := engine.created[0]
	assert.Equal(t, event.PatientID, input.UserID)
	assert.Equal(t, enums.NotificationTypeDocumentUploaded, input.Type)
	assert.Contains(t, input.Message, "labs-2025-08.pdf")
	assert.Equal(t, event.UploadedBy.String(), input.Data["uploadedBy"])
}

func TestProcessAnalyzedIncludesSummary(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	consumer, err := NewConsumer(engine, nil, testLogger())
	require.NoError(t, err)

	event := events.DocumentAnalyzedEvent{
		DocumentID: uuid.New(),
		PatientID:  uuid.New(),
		FileName:   "labs-2025-08.pdf",
		Summary:    "All values within normal range.",
	}
	msg := bus.Message{Topic: events.TopicDocumentAnalyzed, Payload: envelopeBytes(t, event)}

	require.NoError(t, consumer.Process(context.Background(), msg))

	require.Len(t, engine.created, 1)
	input := engine.created[0]
	assert.Equal(t, enums.NotificationTypeDocumentAnalyzed, input.Type)
	assert.Contains(t, input.Message, "All values within normal range.")
}

func TestProcessAnalyzedWithoutSummary(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	consumer, err := NewConsumer(engine, nil, testLogger())
	require.NoError(t, err)

	event := events.DocumentAnalyzedEvent{
		DocumentID: uuid.New(),
		PatientID:  uuid.New(),
		FileName:   "referral.pdf",
	}
	msg := bus.Message{Topic: events.TopicDocumentAnalyzed, Payload: envelopeBytes(t, event)}

	require.NoError(t, consumer.Process(context.Background(), msg))

	require.Len(t, engine.created, 1)
	assert.Equal(t, `Analysis of "referral.pdf" is complete.`, engine.created[0].Message)
}
