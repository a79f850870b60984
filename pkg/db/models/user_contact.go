package models

import (
	"time"

	"github.com/google/uuid"
)

// UserContact is the delivery address book entry for one platform user,
// synced from the identity service. Email and Phone may each be empty; an
// adapter that needs a missing field reports a failed delivery for its
// channel.
type UserContact struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Email     string    `gorm:"type:text" json:"email,omitempty"`
	Phone     string    `gorm:"type:text" json:"phone,omitempty"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}
