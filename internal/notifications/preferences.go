package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
)

// PreferenceUpdate is the partial shape accepted by UpdatePreferences.
// Channels and Types are shallow-merged key by key into the stored maps;
// QuietHours, when present, replaces the stored window wholesale.
type PreferenceUpdate struct {
	Channels   dbtypes.ChannelPrefs `json:"channels,omitempty"`
	Types      dbtypes.TypePrefs    `json:"types,omitempty"`
	QuietHours *dbtypes.QuietHours  `json:"quietHours,omitempty"`
}

// PreferenceRepository encapsulates preference persistence. Rows are created
// lazily with defaults on first access.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository constructs a preference repository bound to the provided gorm DB.
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindOrCreate loads the user's preference row, inserting the default row
// when none exists yet.
func (r *PreferenceRepository) FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find notification preferences")
	}

	defaults := models.DefaultNotificationPreference(userID)
	if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
		// A concurrent request may have inserted the row first.
		var existing models.NotificationPreference
		if findErr := r.db.WithContext(ctx).First(&existing, "user_id = ?", userID).Error; findErr == nil {
			return &existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create default notification preferences")
	}
	return defaults, nil
}

// Merge applies the partial update to the user's row and returns the merged
// result.
func (r *PreferenceRepository) Merge(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*models.NotificationPreference, error) {
	prefs, err := r.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if prefs.Channels == nil {
		prefs.Channels = dbtypes.ChannelPrefs{}
	}
	for channel, enabled := range update.Channels {
		prefs.Channels[channel] = enabled
	}

	if prefs.Types == nil {
		prefs.Types = dbtypes.TypePrefs{}
	}
	for notifType, override := range update.Types {
		prefs.Types[notifType] = override
	}

	if update.QuietHours != nil {
		prefs.QuietHours = *update.QuietHours
	}

	err = r.db.WithContext(ctx).
		Model(&models.NotificationPreference{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"channels":    prefs.Channels,
			"types":       prefs.Types,
			"quiet_hours": prefs.QuietHours,
		}).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update notification preferences")
	}

	return prefs, nil
}
