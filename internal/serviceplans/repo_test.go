package serviceplans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
)

func setupServicePlansTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS service_plans (
  id TEXT PRIMARY KEY,
  care_plan_id TEXT NOT NULL,
  title TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedServicePlan(t *testing.T, db *gorm.DB, carePlanID uuid.UUID, status enums.ServicePlanStatus) *models.ServicePlan {
	t.Helper()

	plan := &models.ServicePlan{
		ID:         uuid.New(),
		CarePlanID: carePlanID,
		Title:      "Home PT sessions",
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func planStatus(t *testing.T, db *gorm.DB, id uuid.UUID) enums.ServicePlanStatus {
	t.Helper()

	var plan models.ServicePlan
	require.NoError(t, db.First(&plan, "id = ?", id).Error)
	return plan.Status
}

func TestCascadeApprovedMovesDraftToInReview(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	draft := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusDraft)
	active := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusActive)

	changed, err := repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	assert.Equal(t, enums.ServicePlanStatusInReview, planStatus(t, db, draft.ID))
	// Children outside the rule's source state are untouched.
	assert.Equal(t, enums.ServicePlanStatusActive, planStatus(t, db, active.ID))
}

func TestCascadeActiveAndCompleted(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	plan := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusApproved)

	changed, err := repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Equal(t, enums.ServicePlanStatusActive, planStatus(t, db, plan.ID))

	changed, err = repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Equal(t, enums.ServicePlanStatusCompleted, planStatus(t, db, plan.ID))
}

func TestCascadeCancelledCatchesEveryState(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	draft := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusDraft)
	active := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusActive)
	done := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusCompleted)

	changed, err := repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(3), changed)

	assert.Equal(t, enums.ServicePlanStatusCancelled, planStatus(t, db, draft.ID))
	assert.Equal(t, enums.ServicePlanStatusCancelled, planStatus(t, db, active.ID))
	assert.Equal(t, enums.ServicePlanStatusCancelled, planStatus(t, db, done.ID))
}

func TestCascadeIsIdempotent(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusDraft)

	changed, err := repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	changed, err = repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}

func TestCascadeUnmappedParentStatusIsNoOp(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	plan := seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusDraft)

	changed, err := repo.CascadeCarePlanStatus(ctx, carePlanID, enums.CarePlanStatusInReview)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
	assert.Equal(t, enums.ServicePlanStatusDraft, planStatus(t, db, plan.ID))
}

func TestFindByCarePlanScopesToParent(t *testing.T) {
	db := setupServicePlansTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	carePlanID := uuid.New()

	seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusDraft)
	seedServicePlan(t, db, carePlanID, enums.ServicePlanStatusActive)
	seedServicePlan(t, db, uuid.New(), enums.ServicePlanStatusDraft)

	plans, err := repo.FindByCarePlan(ctx, carePlanID)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}
