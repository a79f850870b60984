package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// CarePlanStatusChangedEvent reports a care-plan lifecycle transition. It is
// published for both `care-plan.approved` and `care-plan.status-changed`.
type CarePlanStatusChangedEvent struct {
	CarePlanID uuid.UUID            `json:"carePlanId"`
	PatientID  uuid.UUID            `json:"patientId"`
	Title      string               `json:"title"`
	Status     enums.CarePlanStatus `json:"status"`
	ApprovedBy *uuid.UUID           `json:"approvedBy,omitempty"`
}

// ServicesPlanUpdatedEvent reports a services-plan change made directly,
// outside the care-plan cascade.
type ServicesPlanUpdatedEvent struct {
	ServicePlanID uuid.UUID               `json:"servicePlanId"`
	CarePlanID    uuid.UUID               `json:"carePlanId"`
	PatientID     uuid.UUID               `json:"patientId"`
	Title         string                  `json:"title"`
	Status        enums.ServicePlanStatus `json:"status"`
}

// DocumentUploadedEvent reports a new document attached to a patient record.
type DocumentUploadedEvent struct {
	DocumentID uuid.UUID `json:"documentId"`
	PatientID  uuid.UUID `json:"patientId"`
	FileName   string    `json:"fileName"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
}

// DocumentAnalyzedEvent reports completed document analysis.
type DocumentAnalyzedEvent struct {
	DocumentID uuid.UUID `json:"documentId"`
	PatientID  uuid.UUID `json:"patientId"`
	FileName   string    `json:"fileName"`
	Summary    string    `json:"summary,omitempty"`
}

// ProviderAssignedEvent reports a provider joining a patient's care team.
type ProviderAssignedEvent struct {
	ProviderID   uuid.UUID `json:"providerId"`
	PatientID    uuid.UUID `json:"patientId"`
	ProviderName string    `json:"providerName"`
	ServiceName  string    `json:"serviceName,omitempty"`
}

// ProviderAvailabilityChangedEvent invalidates cached availability windows.
type ProviderAvailabilityChangedEvent struct {
	ProviderID uuid.UUID `json:"providerId"`
}

// PasswordResetEvent reports a password-reset request for an account.
type PasswordResetEvent struct {
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requestedAt"`
}

// LoginAlertEvent reports a sign-in from an unrecognized device or location.
type LoginAlertEvent struct {
	UserID    uuid.UUID `json:"userId"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	At        time.Time `json:"at"`
}

// NotificationLifecycleEvent is republished on the bus after local state
// mutations commit so other processes and devices can sync read state.
type NotificationLifecycleEvent struct {
	NotificationID uuid.UUID                  `json:"notificationId"`
	UserID         uuid.UUID                  `json:"userId"`
	Type           enums.NotificationType     `json:"type"`
	Status         enums.NotificationStatus   `json:"status"`
	Priority       enums.NotificationPriority `json:"priority"`
	At             time.Time                  `json:"at"`
}

// NotificationsAllReadEvent reports a clear-all. Other devices drop their
// unread badges for the user without waiting for per-record read events.
type NotificationsAllReadEvent struct {
	UserID uuid.UUID `json:"userId"`
	Count  int64     `json:"count"`
	At     time.Time `json:"at"`
}
