package enums

// NotificationStatus tracks delivery progress of a notification.
//
// The lifecycle is monotonic: pending -> sent -> delivered -> read. The failed
// status is reachable from any non-terminal state; read and failed are
// terminal.
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusDelivered NotificationStatus = "delivered"
	NotificationStatusRead      NotificationStatus = "read"
	NotificationStatusFailed    NotificationStatus = "failed"
)

var notificationStatusRank = map[NotificationStatus]int{
	NotificationStatusPending:   0,
	NotificationStatusSent:      1,
	NotificationStatusDelivered: 2,
	NotificationStatusRead:      3,
}

// IsValid checks whether the given status matches the canonical enum.
func (s NotificationStatus) IsValid() bool {
	if s == NotificationStatusFailed {
		return true
	}
	_, ok := notificationStatusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationStatusRead || s == NotificationStatusFailed
}

// CanTransitionTo enforces the monotonic lifecycle.
func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	if !s.IsValid() || !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == NotificationStatusFailed {
		return true
	}
	return notificationStatusRank[next] > notificationStatusRank[s]
}
