package enums

import "fmt"

// CarePlanStatus mirrors the care-plan lifecycle owned by the planning service.
type CarePlanStatus string

const (
	CarePlanStatusDraft     CarePlanStatus = "DRAFT"
	CarePlanStatusInReview  CarePlanStatus = "IN_REVIEW"
	CarePlanStatusApproved  CarePlanStatus = "APPROVED"
	CarePlanStatusActive    CarePlanStatus = "ACTIVE"
	CarePlanStatusCompleted CarePlanStatus = "COMPLETED"
	CarePlanStatusCancelled CarePlanStatus = "CANCELLED"
)

var validCarePlanStatuses = []CarePlanStatus{
	CarePlanStatusDraft,
	CarePlanStatusInReview,
	CarePlanStatusApproved,
	CarePlanStatusActive,
	CarePlanStatusCompleted,
	CarePlanStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s CarePlanStatus) IsValid() bool {
	for _, candidate := range validCarePlanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCarePlanStatus converts raw strings into CarePlanStatus.
func ParseCarePlanStatus(value string) (CarePlanStatus, error) {
	s := CarePlanStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid care plan status %q", value)
	}
	return s, nil
}
