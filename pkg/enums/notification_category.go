package enums

// NotificationCategory groups notification types for filtering and stats.
type NotificationCategory string

const (
	NotificationCategoryAppointment  NotificationCategory = "appointment"
	NotificationCategoryCarePlan     NotificationCategory = "care_plan"
	NotificationCategoryServicesPlan NotificationCategory = "services_plan"
	NotificationCategoryDocument     NotificationCategory = "document"
	NotificationCategoryProvider     NotificationCategory = "provider"
	NotificationCategoryAccount      NotificationCategory = "account"
	NotificationCategorySystem       NotificationCategory = "system"
)

// AllNotificationCategories lists every category; stats responses zero-fill
// from this slice so clients always see a stable shape.
var AllNotificationCategories = []NotificationCategory{
	NotificationCategoryAppointment,
	NotificationCategoryCarePlan,
	NotificationCategoryServicesPlan,
	NotificationCategoryDocument,
	NotificationCategoryProvider,
	NotificationCategoryAccount,
	NotificationCategorySystem,
}

// IsValid checks whether the given category matches the canonical enum.
func (c NotificationCategory) IsValid() bool {
	for _, candidate := range AllNotificationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}
