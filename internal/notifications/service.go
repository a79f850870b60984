package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atriumcare/carecoord-backend/internal/delivery"
	"github.com/atriumcare/carecoord-backend/pkg/db/models"
	dbtypes "github.com/atriumcare/carecoord-backend/pkg/db/types"
	"github.com/atriumcare/carecoord-backend/pkg/enums"
	pkgerrors "github.com/atriumcare/carecoord-backend/pkg/errors"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
	"github.com/atriumcare/carecoord-backend/pkg/metrics"
	"github.com/atriumcare/carecoord-backend/pkg/pagination"
)

const maxContentLength = 2000

type notificationsRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Notification, pagination.Result, error)
	UpdateDeliveryOutcome(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	MarkRead(ctx context.Context, id uuid.UUID, readAt time.Time) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, readAt time.Time) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

type preferencesRepository interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	Merge(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*models.NotificationPreference, error)
}

// CreateInput is the request shape accepted by Create. Priority and Channels
// fall back to the type mapping and {in_app} respectively when omitted.
type CreateInput struct {
	UserID   uuid.UUID
	Type     enums.NotificationType
	Title    string
	Message  string
	Data     dbtypes.JSONMap
	Priority enums.NotificationPriority
	Channels []enums.Channel
}

// ListResult is one page of a user's feed.
type ListResult struct {
	Items      []models.Notification `json:"items"`
	Pagination pagination.Result     `json:"pagination"`
}

// Service exposes the notification engine contract.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*models.NotificationPreference, error)
	Send(ctx context.Context, notification *models.Notification) ([]delivery.Result, error)
	ApplyDeliveryOutcome(ctx context.Context, notification *models.Notification, results []delivery.Result) error
}

type service struct {
	repo     notificationsRepository
	prefs    preferencesRepository
	adapters map[enums.Channel]delivery.Adapter
	cache    *preferenceCache
	hooks    Hooks
	logg     *logger.Logger
	delivery *metrics.DeliveryMetrics
	now      func() time.Time
}

// NewService builds the notification engine.
func NewService(
	repo notificationsRepository,
	prefs preferencesRepository,
	adapters []delivery.Adapter,
	cacheTTL time.Duration,
	hooks Hooks,
	logg *logger.Logger,
	deliveryMetrics *metrics.DeliveryMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if prefs == nil {
		return nil, fmt.Errorf("preferences repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if hooks == nil {
		hooks = NopHooks{}
	}

	byChannel := make(map[enums.Channel]delivery.Adapter, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		byChannel[adapter.Channel()] = adapter
	}

	return &service{
		repo:     repo,
		prefs:    prefs,
		adapters: byChannel,
		cache:    newPreferenceCache(cacheTTL),
		hooks:    hooks,
		logg:     logg,
		delivery: deliveryMetrics,
		now:      time.Now,
	}, nil
}

// Create validates the request, derives category/priority/channels from the
// type mapping, persists the record, and fires the created hook.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type is required and must be a known notification type")
	}
	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if len(title) > maxContentLength || len(message) > maxContentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title or message exceeds maximum length")
	}

	priority := input.Priority
	if priority == "" {
		priority = input.Type.DefaultPriority()
	} else if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown priority")
	}

	channels := input.Channels
	if len(channels) == 0 {
		channels = []enums.Channel{enums.ChannelInApp}
	}
	for _, channel := range channels {
		if !channel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown channel")
		}
	}

	notification := &models.Notification{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Type:     input.Type,
		Category: input.Type.DefaultCategory(),
		Priority: priority,
		Title:    title,
		Message:  message,
		Data:     input.Data,
		Channels: dbtypes.ChannelList(channels),
		Status:   enums.NotificationStatusPending,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.hooks.NotificationCreated(ctx, notification)
	return notification, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*ListResult, error) {
	items, page, err := s.repo.FindByUser(ctx, userID, filters, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return &ListResult{Items: items, Pagination: page}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.hooks.NotificationRead(ctx, notification)
	return notification, nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.hooks.AllNotificationsRead(ctx, userID, count)
	}
	return count, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *service) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, userID)
}

func (s *service) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	if cached, ok := s.cache.get(userID); ok {
		return cached, nil
	}

	prefs, err := s.prefs.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.put(userID, prefs)
	return prefs, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*models.NotificationPreference, error) {
	if update.QuietHours != nil && update.QuietHours.Enabled {
		if _, ok := parseWallClock(update.QuietHours.Start); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quiet hours start must be HH:MM")
		}
		if _, ok := parseWallClock(update.QuietHours.End); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quiet hours end must be HH:MM")
		}
	}
	for notifType := range update.Types {
		if !notifType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type in preferences")
		}
	}
	for channel := range update.Channels {
		if !channel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown channel in preferences")
		}
	}

	prefs, err := s.prefs.Merge(ctx, userID, update)
	if err != nil {
		// The write may have partially applied; a cached entry is no
		// longer trustworthy.
		s.cache.invalidate(userID)
		return nil, err
	}
	// Replace, never append: the stale entry must not outlive the update.
	s.cache.put(userID, prefs)
	return prefs, nil
}

// Send runs the eligibility and dispatch algorithm. Channels the user
// disabled, or that fall inside quiet hours, produce no result at all; an
// empty slice is a valid outcome. Failures on one channel never block the
// others.
func (s *service) Send(ctx context.Context, notification *models.Notification) ([]delivery.Result, error) {
	if notification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification is required")
	}

	prefs, err := s.GetPreferences(ctx, notification.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	results := make([]delivery.Result, 0, len(enums.OrderedChannels))

	for _, channel := range enums.OrderedChannels {
		if !notification.Channels.Contains(channel) {
			continue
		}
		if !Eligible(prefs, notification.Type, channel, now) {
			continue
		}

		adapter, ok := s.adapters[channel]
		if !ok {
			continue
		}

		started := s.now()
		result := adapter.Deliver(ctx, notification)
		s.delivery.ObserveAttempt(string(channel), result.Success, s.now().Sub(started))

		if !result.Success && result.Error != nil {
			logCtx := s.logg.WithNotificationID(ctx, notification.ID.String())
			logCtx = s.logg.WithField(logCtx, "channel", string(channel))
			s.logg.Error(logCtx, "channel delivery failed", result.Error)
		}

		results = append(results, result)
	}

	return results, nil
}

// ApplyDeliveryOutcome folds the per-channel results into the persisted
// status: any success marks the record sent (setting sentAt once), all
// attempted channels failing marks it failed, and no attempts leave it
// pending.
func (s *service) ApplyDeliveryOutcome(ctx context.Context, notification *models.Notification, results []delivery.Result) error {
	if notification == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification is required")
	}
	if len(results) == 0 {
		return nil
	}

	anySuccess := false
	for _, result := range results {
		if result.Success {
			anySuccess = true
			break
		}
	}

	if anySuccess {
		if notification.SentAt == nil {
			sentAt := s.now().UTC()
			notification.SentAt = &sentAt
		}
		if notification.Status.CanTransitionTo(enums.NotificationStatusSent) {
			notification.Status = enums.NotificationStatusSent
		}
	} else {
		if notification.Status.CanTransitionTo(enums.NotificationStatusFailed) {
			notification.Status = enums.NotificationStatusFailed
		}
	}

	if err := s.repo.UpdateDeliveryOutcome(ctx, notification); err != nil {
		return err
	}

	if anySuccess {
		s.hooks.NotificationDelivered(ctx, notification)
	}
	return nil
}
