package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// ChannelPrefs maps each delivery channel to an enabled flag, stored as JSON.
type ChannelPrefs map[enums.Channel]bool

// Enabled reports whether the channel is switched on. Channels absent from the
// map default to enabled so a sparse row never silences delivery.
func (p ChannelPrefs) Enabled(channel enums.Channel) bool {
	if p == nil {
		return true
	}
	enabled, ok := p[channel]
	if !ok {
		return true
	}
	return enabled
}

func (p *ChannelPrefs) Scan(src any) error {
	return scanJSON(src, p, "ChannelPrefs")
}

func (p ChannelPrefs) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return valueJSON(map[enums.Channel]bool(p))
}

// TypePreference overrides delivery behavior for a single notification type.
type TypePreference struct {
	Enabled  bool            `json:"enabled"`
	Channels []enums.Channel `json:"channels,omitempty"`
}

// TypePrefs holds per-type overrides keyed by notification type, stored as JSON.
// It may be partially populated; absent types fall back to defaults.
type TypePrefs map[enums.NotificationType]TypePreference

func (p *TypePrefs) Scan(src any) error {
	return scanJSON(src, p, "TypePrefs")
}

func (p TypePrefs) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return valueJSON(map[enums.NotificationType]TypePreference(p))
}

// QuietHours is a per-user wall-clock window during which email and SMS
// delivery is suppressed. Start/End are "HH:MM" 24h strings; the window wraps
// midnight when Start > End.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

func (q *QuietHours) Scan(src any) error {
	return scanJSON(src, q, "QuietHours")
}

func (q QuietHours) Value() (driver.Value, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func scanJSON(src, dest any, kind string) error {
	if src == nil {
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("%s: unsupported Scan type %T", kind, src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: decode: %w", kind, err)
	}
	return nil
}

func valueJSON(v any) (driver.Value, error) {
	if v == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
