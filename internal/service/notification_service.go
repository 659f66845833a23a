package service

import (
	"context"

	"nex/internal/cache"
	"nex/internal/models"
	"nex/internal/repository"
)

// NotificationList is a page of notifications with the recipient's unread
// total, computed before any of the page is marked read.
type NotificationList struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

// NotificationService handles notification reads and acknowledgements.
// Creation happens inside the engagement, comment and repost transactions.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List returns a page of the user's notifications, newest first, with
// creator, post, comment and repost context preloaded.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) (*NotificationList, error) {
	var list NotificationList
	if offset == 0 {
		err := cache.Aside(ctx, cache.NotificationsKey(userID), &list, cache.NotifTTL, func() error {
			fetched, fetchErr := s.fetch(ctx, userID, limit, 0)
			if fetchErr != nil {
				return fetchErr
			}
			list = *fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &list, nil
	}
	return s.fetch(ctx, userID, limit, offset)
}

func (s *NotificationService) fetch(ctx context.Context, userID uint, limit, offset int) (*NotificationList, error) {
	notifications, err := s.notifRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Notifications: notifications, UnreadCount: unread}, nil
}

// MarkRead acknowledges the given notifications for the user and returns how
// many were actually flipped. IDs belonging to other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidationError("No notification IDs provided")
	}
	return s.notifRepo.MarkRead(ctx, userID, ids)
}
