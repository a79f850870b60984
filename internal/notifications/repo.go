// Package notifications implements the notification engine: persistence,
// preference handling, channel eligibility, and the send fan-out across
// delivery adapters.
package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
	"github.com/atriumcare/carecoord-backend/pkg/pagination"
)

// ListFilters narrows a user's notification feed. Zero values mean "no
// constraint" for every field.
type ListFilters struct {
	Type     enums.NotificationType
	Category enums.NotificationCategory
	Status   enums.NotificationStatus
	Priority enums.NotificationPriority
	Unread   *bool
	From     *time.Time
	To       *time.Time
	Search   string
}

// Stats is the aggregate shape returned for a user's feed. Category and
// priority maps are zero-filled so the shape is stable for clients.
type Stats struct {
	Total      int64                                `json:"total"`
	Unread     int64                                `json:"unread"`
	ByCategory map[enums.NotificationCategory]int64 `json:"byCategory"`
	ByPriority map[enums.NotificationPriority]int64 `json:"byPriority"`
}

// Repository encapsulates notification persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notification repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create notification")
	}
	return nil
}

// FindByID loads one notification or a not-found error.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find notification")
	}
	return &notification, nil
}

// FindByUser returns one page of the user's feed, newest first, plus the
// page metadata. An empty page is a valid result, not an error.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Notification, pagination.Result, error) {
	params = pagination.Normalize(params)
	scope := func() *gorm.DB {
		return r.applyFilters(r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID), filters)
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, pagination.Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count notifications")
	}

	var items []models.Notification
	err := scope().
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, pagination.Result{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	return items, pagination.NewResult(params, total), nil
}

// UpdateDeliveryOutcome promotes a pending notification to its delivery
// outcome. The guard is part of the query: the user can mark the record
// read while adapters are still retrying, and that concurrent transition
// must win over the fan-out's stale view of the row. Only status and
// sent_at are written; read_at belongs to the read paths.
func (r *Repository) UpdateDeliveryOutcome(ctx context.Context, notification *models.Notification) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", notification.ID, enums.NotificationStatusPending).
		Updates(map[string]any{
			"status":  notification.Status,
			"sent_at": notification.SentAt,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update notification delivery outcome")
	}
	return nil
}

// Delete removes the user's notification. The owner check is part of the
// query so one user can never delete another user's record.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "delete notification")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

// MarkRead transitions one notification to read and returns the updated row.
// Marking an already-read notification is a no-op.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) (*models.Notification, error) {
	notification, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.IsRead() {
		return notification, nil
	}

	err = r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  enums.NotificationStatusRead,
			"read_at": readAt,
		}).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}

	notification.Status = enums.NotificationStatusRead
	notification.ReadAt = &readAt
	return notification, nil
}

// MarkAllRead transitions every unread notification the user owns to read
// and reports how many rows changed. Zero is a valid outcome.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND status <> ?", userID, enums.NotificationStatusRead).
		Updates(map[string]any{
			"status":  enums.NotificationStatusRead,
			"read_at": readAt,
		})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "mark all notifications read")
	}
	return result.RowsAffected, nil
}

// Stats aggregates the user's feed into the zero-filled stable shape.
func (r *Repository) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	stats := &Stats{
		ByCategory: make(map[enums.NotificationCategory]int64, len(enums.AllNotificationCategories)),
		ByPriority: make(map[enums.NotificationPriority]int64, len(enums.AllNotificationPriorities)),
	}
	for _, category := range enums.AllNotificationCategories {
		stats.ByCategory[category] = 0
	}
	for _, priority := range enums.AllNotificationPriorities {
		stats.ByPriority[priority] = 0
	}

	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	}

	if err := scope().Count(&stats.Total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count notifications")
	}
	if err := scope().Where("read_at IS NULL").Count(&stats.Unread).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread notifications")
	}

	type bucketCount struct {
		Bucket string
		Count  int64
	}

	var byCategory []bucketCount
	if err := scope().Select("category AS bucket, COUNT(*) AS count").Group("category").Scan(&byCategory).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count notifications by category")
	}
	for _, row := range byCategory {
		stats.ByCategory[enums.NotificationCategory(row.Bucket)] = row.Count
	}

	var byPriority []bucketCount
	if err := scope().Select("priority AS bucket, COUNT(*) AS count").Group("priority").Scan(&byPriority).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count notifications by priority")
	}
	for _, row := range byPriority {
		stats.ByPriority[enums.NotificationPriority(row.Bucket)] = row.Count
	}

	return stats, nil
}

func (r *Repository) applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.Unread != nil {
		if *filters.Unread {
			query = query.Where("read_at IS NULL")
		} else {
			query = query.Where("read_at IS NOT NULL")
		}
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at <= ?", *filters.To)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(message) LIKE ?", pattern, pattern)
	}
	return query
}
