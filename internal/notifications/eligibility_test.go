package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

func clockAt(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestInQuietHoursDisabledWindow(t *testing.T) {
	t.Parallel()

	qh := dbtypes.QuietHours{Enabled: false, Start: "22:00", End: "06:00"}
	assert.False(t, InQuietHours(qh, clockAt(23, 30)))
}

func TestInQuietHoursWrapAroundWindow(t *testing.T) {
	t.Parallel()

	qh := dbtypes.QuietHours{Enabled: true, Start: "22:00", End: "06:00"}

	assert.True(t, InQuietHours(qh, clockAt(23, 30)))
	assert.True(t, InQuietHours(qh, clockAt(2, 0)))
	assert.False(t, InQuietHours(qh, clockAt(12, 0)))

	// Both boundaries are inside the window.
	assert.True(t, InQuietHours(qh, clockAt(22, 0)))
	assert.True(t, InQuietHours(qh, clockAt(6, 0)))
	assert.False(t, InQuietHours(qh, clockAt(6, 1)))
	assert.False(t, InQuietHours(qh, clockAt(21, 59)))
}

func TestInQuietHoursNonWrappingWindow(t *testing.T) {
	t.Parallel()

	qh := dbtypes.QuietHours{Enabled: true, Start: "09:00", End: "17:00"}

	assert.True(t, InQuietHours(qh, clockAt(10, 0)))
	assert.False(t, InQuietHours(qh, clockAt(20, 0)))

	// Inclusive on both ends.
	assert.True(t, InQuietHours(qh, clockAt(9, 0)))
	assert.True(t, InQuietHours(qh, clockAt(17, 0)))
	assert.False(t, InQuietHours(qh, clockAt(8, 59)))
	assert.False(t, InQuietHours(qh, clockAt(17, 1)))
}

func TestInQuietHoursHonorsTimezone(t *testing.T) {
	t.Parallel()

	qh := dbtypes.QuietHours{Enabled: true, Start: "22:00", End: "06:00", Timezone: "America/New_York"}

	// 03:30 UTC is 22:30 or 23:30 in New York, inside the window either way.
	assert.True(t, InQuietHours(qh, clockAt(3, 30)))
	// 16:00 UTC is 11:00 or 12:00 in New York, outside the window.
	assert.False(t, InQuietHours(qh, clockAt(16, 0)))
}

func TestInQuietHoursMalformedConfigDisablesWindow(t *testing.T) {
	t.Parallel()

	cases := []dbtypes.QuietHours{
		{Enabled: true, Start: "25:00", End: "06:00"},
		{Enabled: true, Start: "22:00", End: "06:61"},
		{Enabled: true, Start: "ten", End: "06:00"},
		{Enabled: true, Start: "", End: ""},
		{Enabled: true, Start: "22:00", End: "06:00", Timezone: "Mars/Olympus"},
	}
	for _, qh := range cases {
		assert.False(t, InQuietHours(qh, clockAt(23, 30)), "%+v", qh)
	}
}

func TestEligibleDefaultsWhenPreferencesMissing(t *testing.T) {
	t.Parallel()

	assert.True(t, Eligible(nil, enums.NotificationTypeCarePlanApproved, enums.ChannelEmail, clockAt(12, 0)))
}

func TestEligibleRespectsGlobalChannelToggle(t *testing.T) {
	t.Parallel()

	prefs := &models.NotificationPreference{
		Channels: dbtypes.ChannelPrefs{enums.ChannelEmail: false},
	}

	assert.False(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelEmail, clockAt(12, 0)))
	assert.True(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelSMS, clockAt(12, 0)))
	assert.True(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelInApp, clockAt(12, 0)))
}

func TestEligibleRespectsTypeOverride(t *testing.T) {
	t.Parallel()

	prefs := &models.NotificationPreference{
		Types: dbtypes.TypePrefs{
			enums.NotificationTypeDocumentUploaded: {Enabled: false},
			enums.NotificationTypePasswordReset: {
				Enabled:  true,
				Channels: []enums.Channel{enums.ChannelEmail},
			},
		},
	}

	// Disabled type blocks every channel.
	assert.False(t, Eligible(prefs, enums.NotificationTypeDocumentUploaded, enums.ChannelInApp, clockAt(12, 0)))
	assert.False(t, Eligible(prefs, enums.NotificationTypeDocumentUploaded, enums.ChannelEmail, clockAt(12, 0)))

	// Channel allow-list on an enabled type narrows delivery.
	assert.True(t, Eligible(prefs, enums.NotificationTypePasswordReset, enums.ChannelEmail, clockAt(12, 0)))
	assert.False(t, Eligible(prefs, enums.NotificationTypePasswordReset, enums.ChannelSMS, clockAt(12, 0)))

	// Types without overrides are unaffected.
	assert.True(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelSMS, clockAt(12, 0)))
}

func TestEligibleQuietHoursExemptInApp(t *testing.T) {
	t.Parallel()

	prefs := &models.NotificationPreference{
		QuietHours: dbtypes.QuietHours{Enabled: true, Start: "22:00", End: "06:00"},
	}

	at := clockAt(23, 30)
	assert.False(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelEmail, at))
	assert.False(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelSMS, at))
	assert.True(t, Eligible(prefs, enums.NotificationTypeCarePlanApproved, enums.ChannelInApp, at))
}
