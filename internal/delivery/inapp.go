package delivery

import (
	"context"
	"strconv"
	"time"

	"github.com/atriumcare/carecoord-backend/internal/realtime"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// InAppAdapter delivers notifications to the in-process realtime hub. The
// notification row itself is the durable in-app copy, so this adapter
// always succeeds; the hub emit is best effort for connected clients.
type InAppAdapter struct {
	hub *realtime.Hub
}

func NewInAppAdapter(hub *realtime.Hub) *InAppAdapter {
	return &InAppAdapter{hub: hub}
}

func (a *InAppAdapter) Channel() enums.Channel {
	return enums.ChannelInApp
}

func (a *InAppAdapter) Deliver(_ context.Context, notification *models.Notification) Result {
	reached := 0
	if a.hub != nil {
		reached = a.hub.Emit(notification)
	}
	return Result{
		Channel: enums.ChannelInApp,
		Success: true,
		Metadata: map[string]string{
			"delivered_at": time.Now().UTC().Format(time.RFC3339),
			"subscribers":  strconv.Itoa(reached),
		},
	}
}
