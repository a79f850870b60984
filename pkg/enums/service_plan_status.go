package enums

import "fmt"

// ServicePlanStatus tracks a services plan attached to a care plan.
type ServicePlanStatus string

const (
	ServicePlanStatusDraft     ServicePlanStatus = "DRAFT"
	ServicePlanStatusInReview  ServicePlanStatus = "IN_REVIEW"
	ServicePlanStatusApproved  ServicePlanStatus = "APPROVED"
	ServicePlanStatusActive    ServicePlanStatus = "ACTIVE"
	ServicePlanStatusCompleted ServicePlanStatus = "COMPLETED"
	ServicePlanStatusCancelled ServicePlanStatus = "CANCELLED"
)

var validServicePlanStatuses = []ServicePlanStatus{
	ServicePlanStatusDraft,
	ServicePlanStatusInReview,
	ServicePlanStatusApproved,
	ServicePlanStatusActive,
	ServicePlanStatusCompleted,
	ServicePlanStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ServicePlanStatus) IsValid() bool {
	for _, candidate := range validServicePlanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServicePlanStatus converts raw strings into ServicePlanStatus.
func ParseServicePlanStatus(value string) (ServicePlanStatus, error) {
	s := ServicePlanStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid service plan status %q", value)
	}
	return s, nil
}
