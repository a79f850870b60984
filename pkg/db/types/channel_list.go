package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// ChannelList stores the ordered set of requested delivery channels as JSON.
type ChannelList []enums.Channel

func (c *ChannelList) Scan(src any) error {
	if src == nil {
		*c = ChannelList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("ChannelList: unsupported Scan type %T", src)
	}

	var out []enums.Channel
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ChannelList: decode %q: %w", string(raw), err)
	}
	*c = ChannelList(out)
	return nil
}

func (c ChannelList) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal([]enums.Channel(c))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Contains reports whether the list requests the given channel.
func (c ChannelList) Contains(channel enums.Channel) bool {
	for _, candidate := range c {
		if candidate == channel {
			return true
		}
	}
	return false
}
