package enums

import "fmt"

// Channel identifies a notification delivery mechanism.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// OrderedChannels is the deterministic dispatch order used by the engine.
var OrderedChannels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS}

// IsValid checks whether the given channel matches the canonical enum.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// ParseChannel converts raw strings into Channel.
func ParseChannel(value string) (Channel, error) {
	ch := Channel(value)
	if !ch.IsValid() {
		return "", fmt.Errorf("invalid channel %q", value)
	}
	return ch, nil
}
