package notifications

import (
	"strconv"
	"strings"
	"time"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// Eligible decides whether a channel should be attempted for a notification
// of the given type, as a pure function of preferences and the clock. The
// in-app channel ignores quiet hours: it is a local emission, and the row is
// already visible in the user's feed.
func Eligible(prefs *models.NotificationPreference, notifType enums.NotificationType, channel enums.Channel, now time.Time) bool {
	if prefs == nil {
		return true
	}

	if !prefs.Channels.Enabled(channel) {
		return false
	}

	if override, ok := prefs.Types[notifType]; ok {
		if !override.Enabled {
			return false
		}
		if len(override.Channels) > 0 && !containsChannel(override.Channels, channel) {
			return false
		}
	}

	if channel != enums.ChannelInApp && InQuietHours(prefs.QuietHours, now) {
		return false
	}

	return true
}

// InQuietHours reports whether now falls inside the configured window.
//
// Start and End are wall-clock "HH:MM" strings evaluated in the window's
// timezone. Both ends are inclusive in the non-wrapping case; when
// Start > End the window wraps midnight and the check becomes
// t >= Start OR t <= End. A malformed time or unknown timezone disables the
// window entirely, because delivering is safer than silently dropping.
func InQuietHours(qh dbtypes.QuietHours, now time.Time) bool {
	if !qh.Enabled {
		return false
	}

	start, ok := parseWallClock(qh.Start)
	if !ok {
		return false
	}
	end, ok := parseWallClock(qh.End)
	if !ok {
		return false
	}

	loc := time.UTC
	if tz := strings.TrimSpace(qh.Timezone); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return false
		}
		loc = parsed
	}

	local := now.In(loc)
	current := local.Hour()*60 + local.Minute()

	if start <= end {
		return current >= start && current <= end
	}
	return current >= start || current <= end
}

// parseWallClock converts "HH:MM" into minutes since midnight.
func parseWallClock(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func containsChannel(channels []enums.Channel, channel enums.Channel) bool {
	for _, c := range channels {
		if c == channel {
			return true
		}
	}
	return false
}
