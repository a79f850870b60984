package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumcare/carecoord-backend/internal/realtime"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

func TestInAppAdapterDeliverEmitsToHub(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	defer hub.Close()

	n := emailNotification()
	sub := hub.Subscribe(context.Background(), n.UserID)

	adapter := NewInAppAdapter(hub)
	result := adapter.Deliver(context.Background(), n)

	require.True(t, result.Success)
	assert.Equal(t, enums.ChannelInApp, result.Channel)
	assert.Equal(t, "1", result.Metadata["subscribers"])
	assert.NotEmpty(t, result.Metadata["delivered_at"])

	select {
	case evt := <-sub.Events():
		assert.Equal(t, n.ID, evt.NotificationID)
	case <-time.After(time.Second):
		t.Fatal("expected hub event")
	}
}

func TestInAppAdapterDeliverSucceedsWithoutSubscribers(t *testing.T) {
	t.Parallel()

	hub := realtime.NewHub()
	defer hub.Close()

	adapter := NewInAppAdapter(hub)
	result := adapter.Deliver(context.Background(), emailNotification())

	assert.True(t, result.Success)
	assert.Equal(t, "0", result.Metadata["subscribers"])
}
