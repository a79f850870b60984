package provider

import (
	"context"
	"encoding/json"
	"errors"
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

type fakeCache struct {
	deleted []string
	err     error
}

func (f *fakeCache) AvailabilityKey(providerID string) string {
	return "cc:availability:" + providerID
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return f.err
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

func TestProcessAssignedNotifiesPatient(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	cache := &fakeCache{}
	consumer, err := NewConsumer(engine, nil, cache, testLogger())
	require.NoError(t, err)

	event := events.ProviderAssignedEvent{
		ProviderID:   uuid.New(),
		PatientID:    uuid.New(),
		ProviderName: "Dr. Okafor",
		ServiceName:  "Physical Therapy",
	}
	msg := bus.Message{Topic: events.TopicProviderAssigned, Payload: envelopeBytes(t, event)}

	require.NoError(t, consumer.Process(context.Background(), msg))

	require.Len(t, engine.created, 1)
	input := engine.created[0]
	assert.Equal(t, event.PatientID, input.UserID)
	assert.Equal(t, enums.NotificationTypeProviderAssigned, input.Type)
	assert.Contains(t, input.Message, "Dr. Okafor")
	assert.Contains(t, input.Message, "Physical Therapy")
	assert.Empty(t, cache.deleted)
}

func TestProcessAvailabilityChangeInvalidatesCacheOnly(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	cache := &fakeCache{}
	consumer, err := NewConsumer(engine, nil, cache, testLogger())
	require.NoError(t, err)

	event := events.ProviderAvailabilityChangedEvent{ProviderID: uuid.New()}
	msg := bus.Message{Topic: events.TopicProviderAvailabilityChanged, Payload: envelopeBytes(t, event)}

	require.NoError(t, consumer.Process(context.Background(), msg))

	assert.Empty(t, engine.created)
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, "cc:availability:"+event.ProviderID.String(), cache.deleted[0])
}

func TestProcessCacheFailurePropagates(t *testing.T) {
	t.Parallel()

	cache := &fakeCache{err: errors.New("redis down")}
	consumer, err := NewConsumer(&fakeEngine{}, nil, cache, testLogger())
	require.NoError(t, err)

	event := events.ProviderAvailabilityChangedEvent{ProviderID: uuid.New()}
	msg := bus.Message{Topic: events.TopicProviderAvailabilityChanged, Payload: envelopeBytes(t, event)}

	err = consumer.Process(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalidate availability cache")
}
