package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/bus"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/events"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

// Hooks observes notification lifecycle transitions after the local state
// mutation commits. Implementations must not block and must not fail the
// triggering operation.
type Hooks interface {
	NotificationCreated(ctx context.Context, notification *models.Notification)
	NotificationDelivered(ctx context.Context, notification *models.Notification)
	NotificationRead(ctx context.Context, notification *models.Notification)
	AllNotificationsRead(ctx context.Context, userID uuid.UUID, count int64)
}

// NopHooks discards all lifecycle callbacks.
type NopHooks struct{}

func (NopHooks) NotificationCreated(context.Context, *models.Notification)   {}
func (NopHooks) NotificationDelivered(context.Context, *models.Notification) {}
func (NopHooks) NotificationRead(context.Context, *models.Notification)      {}
func (NopHooks) AllNotificationsRead(context.Context, uuid.UUID, int64)      {}

// BusHooks republishes lifecycle transitions as bus events so other
// processes and devices can sync. Publish failures are logged and swallowed;
// the local mutation already committed.
type BusHooks struct {
	publisher bus.Publisher
	logg      *logger.Logger
}

func NewBusHooks(publisher bus.Publisher, logg *logger.Logger) *BusHooks {
	return &BusHooks{publisher: publisher, logg: logg}
}

func (h *BusHooks) NotificationCreated(ctx context.Context, notification *models.Notification) {
	h.publish(ctx, events.TopicNotificationCreated, notification)
}

func (h *BusHooks) NotificationDelivered(ctx context.Context, notification *models.Notification) {
	h.publish(ctx, events.TopicNotificationDelivered, notification)
}

func (h *BusHooks) NotificationRead(ctx context.Context, notification *models.Notification) {
	h.publish(ctx, events.TopicNotificationRead, notification)
}

// AllNotificationsRead publishes one bulk event instead of a read event per
// record; a clear-all can touch thousands of rows.
func (h *BusHooks) AllNotificationsRead(ctx context.Context, userID uuid.UUID, count int64) {
	if h == nil || h.publisher == nil {
		return
	}

	payload := events.NotificationsAllReadEvent{
		UserID: userID,
		Count:  count,
		At:     time.Now().UTC(),
	}
	envelope, err := events.NewEnvelope(payload)
	if err == nil {
		err = h.publisher.Publish(ctx, events.TopicNotificationAllRead, envelope)
	}
	if err != nil && h.logg != nil {
		logCtx := h.logg.WithTopic(ctx, events.TopicNotificationAllRead)
		logCtx = h.logg.WithUserID(logCtx, userID.String())
		h.logg.Error(logCtx, "publish notification lifecycle event", err)
	}
}

func (h *BusHooks) publish(ctx context.Context, topic string, notification *models.Notification) {
	if h == nil || h.publisher == nil {
		return
	}

	payload := events.NotificationLifecycleEvent{
		NotificationID: notification.ID,
		UserID:         notification.UserID,
		Type:           notification.Type,
		Status:         notification.Status,
		Priority:       notification.Priority,
		At:             time.Now().UTC(),
	}
	envelope, err := events.NewEnvelope(payload)
	if err != nil {
		h.logError(ctx, topic, notification, err)
		return
	}

	if err := h.publisher.Publish(ctx, topic, envelope); err != nil {
		h.logError(ctx, topic, notification, err)
	}
}

func (h *BusHooks) logError(ctx context.Context, topic string, notification *models.Notification, err error) {
	if h.logg == nil {
		return
	}
	ctx = h.logg.WithTopic(ctx, topic)
	ctx = h.logg.WithNotificationID(ctx, notification.ID.String())
	h.logg.Error(ctx, "publish notification lifecycle event", err)
}
