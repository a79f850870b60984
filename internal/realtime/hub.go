// Package realtime provides the in-process fan-out used by the in-app
// delivery channel. A Hub tracks live subscriptions per user and pushes
// notification events to them without blocking the sender.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
)

const defaultBufferSize = 16

// Event is what subscribers receive when a notification is emitted for
// their user.
type Event struct {
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	EmittedAt      time.Time `json:"emitted_at"`
}

// Subscription is a live per-user stream of events. Events returns the
// receive channel; the channel is closed when the subscription is cancelled
// or the hub shuts down.
type Subscription struct {
	userID uuid.UUID
	ch     chan Event
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.ch)
	})
}

// Hub fans notification events out to in-process subscribers. Emit never
// blocks: events for subscribers with a full buffer are dropped and counted.
// All methods are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*Subscription]struct{}
	dropped atomic.Uint64
	closed  bool
	bufSize int
}

func NewHub() *Hub {
	return &Hub{
		subs:    make(map[uuid.UUID]map[*Subscription]struct{}),
		bufSize: defaultBufferSize,
	}
}

// Subscribe registers a stream for the given user. The subscription is
// removed and its channel closed when ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context, userID uuid.UUID) *Subscription {
	sub := &Subscription{
		userID: userID,
		ch:     make(chan Event, h.bufSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			h.Unsubscribe(sub)
		}()
	}

	return sub
}

// Unsubscribe removes the subscription and closes its channel. It is safe
// to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	h.mu.Unlock()

	sub.close()
}

// Emit pushes an event for the notification's user to every live
// subscription. Returns the number of subscribers that received the event.
func (h *Hub) Emit(n *models.Notification) int {
	evt := Event{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Priority:       string(n.Priority),
		Title:          n.Title,
		Message:        n.Message,
		EmittedAt:      time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return 0
	}

	delivered := 0
	for sub := range h.subs[n.UserID] {
		select {
		case sub.ch <- evt:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// Subscribers reports the number of live subscriptions for a user.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Dropped reports how many events were discarded because a subscriber's
// buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close shuts the hub down and closes every subscription channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, set := range h.subs {
		for sub := range set {
			sub.close()
		}
	}
	clear(h.subs)
}
