// Package delivery holds the per-channel adapters the notification engine
// fans out to. Each adapter owns one channel; the engine decides which
// channels a notification goes to and records the per-channel outcome.
package delivery

import (
	"context"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// Result is the outcome of one channel attempt for one notification.
// Error is the terminal failure after retries were exhausted; Metadata
// carries adapter specifics such as provider message IDs.
type Result struct {
	Channel  enums.Channel
	Success  bool
	Error    error
	Metadata map[string]string
}

// Adapter delivers a notification over a single channel. Deliver returns a
// Result rather than a bare error so partial fan-out outcomes can be
// recorded per channel.
type Adapter interface {
	Channel() enums.Channel
	Deliver(ctx context.Context, notification *models.Notification) Result
}

// Recipient holds the contact details an outbound adapter needs.
type Recipient struct {
	Email string
	Phone string
	Name  string
}

// RecipientDirectory resolves a user ID to contact details. The worker
// wires in a directory backed by the identity service; tests use fakes.
type RecipientDirectory interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*Recipient, error)
}

func failure(ch enums.Channel, err error) Result {
	return Result{Channel: ch, Error: err}
}
