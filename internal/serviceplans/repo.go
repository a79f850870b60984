// Package serviceplans owns the services-plan rows that hang off a care
// plan. The care-plan consumer uses it to cascade parent status changes
// into the child plans.
package serviceplans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
)

// cascadeRule maps a parent care-plan status to the child transition it
// forces: children currently in From move to To. A nil From matches any
// non-target status.
type cascadeRule struct {
	From *enums.ServicePlanStatus
	To   enums.ServicePlanStatus
}

func statusPtr(s enums.ServicePlanStatus) *enums.ServicePlanStatus {
	return &s
}

// cascadeRules is the fixed care-plan to services-plan transition table.
var cascadeRules = map[enums.CarePlanStatus]cascadeRule{
	enums.CarePlanStatusApproved:  {From: statusPtr(enums.ServicePlanStatusDraft), To: enums.ServicePlanStatusInReview},
	enums.CarePlanStatusActive:    {From: statusPtr(enums.ServicePlanStatusApproved), To: enums.ServicePlanStatusActive},
	enums.CarePlanStatusCompleted: {From: statusPtr(enums.ServicePlanStatusActive), To: enums.ServicePlanStatusCompleted},
	enums.CarePlanStatusCancelled: {To: enums.ServicePlanStatusCancelled},
}

// Repository encapsulates services-plan persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a services-plan repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCarePlan returns every services plan attached to the care plan.
func (r *Repository) FindByCarePlan(ctx context.Context, carePlanID uuid.UUID) ([]models.ServicePlan, error) {
	var plans []models.ServicePlan
	err := r.db.WithContext(ctx).
		Where("care_plan_id = ?", carePlanID).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list service plans")
	}
	return plans, nil
}

// CascadeCarePlanStatus applies the fixed transition table for the parent's
// new status to the care plan's children and reports how many rows changed.
// The update is idempotent: children already in the target state, or not in
// the rule's source state, are left alone. Parent statuses outside the
// table are a no-op.
func (r *Repository) CascadeCarePlanStatus(ctx context.Context, carePlanID uuid.UUID, parentStatus enums.CarePlanStatus) (int64, error) {
	rule, ok := cascadeRules[parentStatus]
	if !ok {
		return 0, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.ServicePlan{}).
		Where("care_plan_id = ?", carePlanID).
		Where("status <> ?", rule.To)
	if rule.From != nil {
		query = query.Where("status = ?", *rule.From)
	}

	result := query.Update("status", rule.To)
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "cascade service plan status")
	}
	return result.RowsAffected, nil
}
