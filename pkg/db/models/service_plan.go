package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

// ServicePlan is the services plan attached to a care plan. The notification
// worker only touches its status when cascading care-plan transitions.
type ServicePlan struct {
	ID         uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CarePlanID uuid.UUID               `gorm:"type:uuid;not null;index" json:"carePlanId"`
	Title      string                  `gorm:"type:text;not null" json:"title"`
	Status     enums.ServicePlanStatus `gorm:"type:text;not null;default:DRAFT" json:"status"`
	CreatedAt  time.Time               `gorm:"type:timestamptz;default:now()" json:"createdAt"`
	UpdatedAt  time.Time               `gorm:"type:timestamptz;default:now()" json:"updatedAt"`
}
