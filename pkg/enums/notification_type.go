package enums

import "fmt"

// NotificationType classifies what happened; it is a closed enum.
type NotificationType string

const (
	NotificationTypeAppointmentReminder  NotificationType = "appointment_reminder"
	NotificationTypeAppointmentScheduled NotificationType = "appointment_scheduled"
	NotificationTypeAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationTypeCarePlanApproved     NotificationType = "care_plan_approved"
	NotificationTypeCarePlanUpdated      NotificationType = "care_plan_updated"
	NotificationTypeServicesPlanUpdated  NotificationType = "services_plan_updated"
	NotificationTypeDocumentUploaded     NotificationType = "document_uploaded"
	NotificationTypeDocumentAnalyzed     NotificationType = "document_analyzed"
	NotificationTypeProviderAssigned     NotificationType = "provider_assigned"
	NotificationTypePasswordReset        NotificationType = "password_reset"
	NotificationTypeSecurityAlert        NotificationType = "security_alert"
	NotificationTypeSystemAnnouncement   NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeAppointmentReminder,
	NotificationTypeAppointmentScheduled,
	NotificationTypeAppointmentCancelled,
	NotificationTypeCarePlanApproved,
	NotificationTypeCarePlanUpdated,
	NotificationTypeServicesPlanUpdated,
	NotificationTypeDocumentUploaded,
	NotificationTypeDocumentAnalyzed,
	NotificationTypeProviderAssigned,
	NotificationTypePasswordReset,
	NotificationTypeSecurityAlert,
	NotificationTypeSystemAnnouncement,
}

// notificationTypeDefaults is the static type mapping table: every type has a
// category and a default priority used when the creation request supplies none.
var notificationTypeDefaults = map[NotificationType]struct {
	Category NotificationCategory
	Priority NotificationPriority
}{
	NotificationTypeAppointmentReminder:  {NotificationCategoryAppointment, NotificationPriorityNormal},
	NotificationTypeAppointmentScheduled: {NotificationCategoryAppointment, NotificationPriorityNormal},
	NotificationTypeAppointmentCancelled: {NotificationCategoryAppointment, NotificationPriorityHigh},
	NotificationTypeCarePlanApproved:     {NotificationCategoryCarePlan, NotificationPriorityHigh},
	NotificationTypeCarePlanUpdated:      {NotificationCategoryCarePlan, NotificationPriorityNormal},
	NotificationTypeServicesPlanUpdated:  {NotificationCategoryServicesPlan, NotificationPriorityNormal},
	NotificationTypeDocumentUploaded:     {NotificationCategoryDocument, NotificationPriorityLow},
	NotificationTypeDocumentAnalyzed:     {NotificationCategoryDocument, NotificationPriorityNormal},
	NotificationTypeProviderAssigned:     {NotificationCategoryProvider, NotificationPriorityNormal},
	NotificationTypePasswordReset:        {NotificationCategoryAccount, NotificationPriorityUrgent},
	NotificationTypeSecurityAlert:        {NotificationCategoryAccount, NotificationPriorityUrgent},
	NotificationTypeSystemAnnouncement:   {NotificationCategorySystem, NotificationPriorityLow},
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	_, ok := notificationTypeDefaults[n]
	return ok
}

// DefaultCategory returns the category derived from the type mapping table.
func (n NotificationType) DefaultCategory() NotificationCategory {
	if defaults, ok := notificationTypeDefaults[n]; ok {
		return defaults.Category
	}
	return NotificationCategorySystem
}

// DefaultPriority returns the priority assigned when a request omits one.
func (n NotificationType) DefaultPriority() NotificationPriority {
	if defaults, ok := notificationTypeDefaults[n]; ok {
		return defaults.Priority
	}
	return NotificationPriorityNormal
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
