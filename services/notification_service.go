package services

import (
	"context"
	"log"
	"strings"

	"gorm.io/gorm"

	"discovery-api/apperrors"
	"discovery-api/models"
)

// NotificationInput describes one notification fanned out to Recipients.
type NotificationInput struct {
	Recipients    []string
	Title         string
	Description   string
	Type          models.NotificationType
	Priority      models.NotificationPriority
	ProjectID     *string
	RelatedUserID *string
	DeliverableID *string
}

// NotificationFilter narrows ListForUser.
type NotificationFilter struct {
	Type       string
	UnreadOnly bool
}

// NotificationService stores per-user notifications and publishes each new
// one through an EventPublisher.
type NotificationService struct {
	db        *gorm.DB
	publisher EventPublisher
	clock     clock
}

// NewNotificationService instantiates the service. A nil publisher disables
// event fan-out.
func NewNotificationService(db *gorm.DB, publisher EventPublisher) *NotificationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &NotificationService{db: db, publisher: publisher}
}

// Notify inserts one row per distinct recipient in a single statement and
// publishes the created rows. Publishing failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) ([]models.Notification, error) {
	recipients := uniqueIDs(in.Recipients)
	if len(recipients) == 0 {
		return []models.Notification{}, nil
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperrors.Validation("Title is required")
	}
	if in.Type == "" {
		in.Type = models.NotificationSystem
	}
	if !in.Type.Valid() {
		return nil, apperrors.Validation("Invalid notification type")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperrors.Validation("Invalid priority")
	}

	now := s.clock.now()
	rows := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, models.Notification{
			ID:            newID(),
			UserID:        userID,
			Title:         in.Title,
			Description:   in.Description,
			Type:          in.Type,
			Priority:      in.Priority,
			ProjectID:     in.ProjectID,
			RelatedUserID: in.RelatedUserID,
			DeliverableID: in.DeliverableID,
			CreatedAt:     now,
		})
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to create notifications", "")
	}

	pubCtx := persistentContext(ctx)
	for _, n := range rows {
		if err := s.publisher.PublishNotification(pubCtx, n); err != nil {
			log.Printf("Warning: failed to publish notification %s: %v", n.ID, err)
		}
	}
	return rows, nil
}

// NotifyQuietly is Notify for side effects of another write: errors are
// logged and swallowed so the primary operation still succeeds.
func (s *NotificationService) NotifyQuietly(ctx context.Context, in NotificationInput) {
	if _, err := s.Notify(persistentContext(ctx), in); err != nil {
		log.Printf("Warning: failed to create %s notification %q: %v", in.Type, in.Title, err)
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, f NotificationFilter) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("userId = ?", userID)
	if t := strings.TrimSpace(f.Type); t != "" {
		if !models.NotificationType(t).Valid() {
			return nil, apperrors.Validation("Invalid notification type")
		}
		q = q.Where("type = ?", t)
	}
	if f.UnreadOnly {
		q = q.Where("isRead = ?", false)
	}

	items := make([]models.Notification, 0)
	if err := q.Order("createdAt DESC").Find(&items).Error; err != nil {
		return nil, apperrors.FromDB(err, "Failed to fetch notifications", "")
	}
	return items, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("userId = ? AND isRead = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.FromDB(err, "Failed to count notifications", "")
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read. Notifications that
// belong to someone else are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE notifications SET isRead = TRUE WHERE id = ? AND userId = ?",
		id, userID,
	)
	if res.Error != nil {
		return apperrors.FromDB(res.Error, "Failed to update notification", "")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Exec(
		"UPDATE notifications SET isRead = TRUE WHERE userId = ? AND isRead = FALSE",
		userID,
	)
	if res.Error != nil {
		return 0, apperrors.FromDB(res.Error, "Failed to update notifications", "")
	}
	return res.RowsAffected, nil
}

// Delete removes one of the user's notifications. Unknown ids are a no-op.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	err := s.db.WithContext(ctx).Exec(
		"DELETE FROM notifications WHERE id = ? AND userId = ?",
		id, userID,
	).Error
	if err != nil {
		return apperrors.FromDB(err, "Failed to delete notification", "")
	}
	return nil
}
