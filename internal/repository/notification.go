package repository

import (
	"context"

	"nex/internal/cache"
	"nex/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification reads and
// read-flag updates. Notification creation happens inside the coordinator's
// transactions, never through this interface.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Post").
		Preload("Comment").
		Preload("Repost").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips the read flag for the given ids, scoped to the recipient so
// a user cannot acknowledge someone else's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("read", true)
	if result.Error == nil {
		cache.InvalidateNotifications(ctx, userID)
	}
	return result.RowsAffected, result.Error
}
