package events

// Topic names follow the `<domain>.<action>` convention shared with the other
// CareCoord services. Renaming one is a wire-compatibility break.
const (
	TopicCarePlanApproved      = "care-plan.approved"
	TopicCarePlanStatusChanged = "care-plan.status-changed"

	TopicServicesPlanUpdated = "services-plan.updated"

	TopicDocumentUploaded = "document.uploaded"
	TopicDocumentAnalyzed = "document.analyzed"

	TopicProviderAssigned            = "provider.assigned"
	TopicProviderAvailabilityChanged = "provider.availability-changed"

	TopicAuthPasswordReset = "auth.password-reset"
	TopicAuthLoginAlert    = "auth.login-alert"

	TopicNotificationCreated   = "notification.created"
	TopicNotificationDelivered = "notification.delivered"
	TopicNotificationRead      = "notification.read"
	TopicNotificationAllRead   = "notification.all-read"
)
