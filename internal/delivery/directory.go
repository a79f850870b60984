package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
)

// ContactDirectory resolves recipients from the synced user_contacts table.
type ContactDirectory struct {
	db *gorm.DB
}

// NewContactDirectory builds the gorm-backed recipient directory.
func NewContactDirectory(db *gorm.DB) (*ContactDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &ContactDirectory{db: db}, nil
}

func (d *ContactDirectory) Lookup(ctx context.Context, userID uuid.UUID) (*Recipient, error) {
	var contact models.UserContact
	err := d.db.WithContext(ctx).First(&contact, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no contact entry for user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up contact")
	}
	return &Recipient{Name: contact.Name, Email: contact.Email, Phone: contact.Phone}, nil
}
