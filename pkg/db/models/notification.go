package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// Notification is the persisted unit of communication targeted at one user.
//
// Invariants: Channels is never empty after creation; ReadAt implies status
// read; SentAt implies status sent, delivered, or read.
type Notification struct {
	ID        uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID                  `gorm:"type:uuid;not null;index" json:"userId"`
	Type      enums.NotificationType     `gorm:"type:text;not null" json:"type"`
	Category  enums.NotificationCategory `gorm:"type:text;not null" json:"category"`
	Priority  enums.NotificationPriority `gorm:"type:text;not null" json:"priority"`
	Title     string                     `gorm:"type:text;not null" json:"title"`
	Message   string                     `gorm:"type:text;not null" json:"message"`
	Data      dbtypes.JSONMap            `gorm:"type:jsonb" json:"data,omitempty"`
	Channels  dbtypes.ChannelList        `gorm:"type:jsonb;not null" json:"channels"`
	Status    enums.NotificationStatus   `gorm:"type:text;not null;default:pending" json:"status"`
	SentAt    *time.Time                 `gorm:"type:timestamptz" json:"sentAt,omitempty"`
	ReadAt    *time.Time                 `gorm:"type:timestamptz" json:"readAt,omitempty"`
	CreatedAt time.Time                  `gorm:"type:timestamptz;default:now()" json:"createdAt"`
}

// IsRead reports whether the user has read the notification.
func (n *Notification) IsRead() bool {
	return n.Status == enums.NotificationStatusRead
}
