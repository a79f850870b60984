package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// NotificationPreference holds per-user delivery configuration, one row per
// user, created lazily with defaults on first access.
type NotificationPreference struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Channels   dbtypes.ChannelPrefs `gorm:"type:jsonb;not null" json:"channels"`
	Types      dbtypes.TypePrefs    `gorm:"type:jsonb;not null" json:"types"`
	QuietHours dbtypes.QuietHours   `gorm:"type:jsonb;not null" json:"quietHours"`
	UpdatedAt  time.Time            `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}

// DefaultNotificationPreference returns the lazily created default row: every
// channel enabled, no type overrides, quiet hours disabled.
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID: userID,
		Channels: dbtypes.ChannelPrefs{
			enums.ChannelInApp: true,
			enums.ChannelEmail: true,
			enums.ChannelSMS:   true,
		},
		Types:      dbtypes.TypePrefs{},
		QuietHours: dbtypes.QuietHours{},
	}
}
