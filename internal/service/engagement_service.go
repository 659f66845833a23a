package service

import (
	"context"
	"errors"
	"strings"

	"nex/internal/cache"
	"nex/internal/models"
	"nex/internal/observability"
	"nex/internal/realtime"
	"nex/internal/repository"

	"gorm.io/gorm"
)

// ToggleResult reports whether a toggle created the relation (true) or
// removed an existing one (false).
type ToggleResult struct {
	Created bool `json:"created"`
}

// EngagementService coordinates the like/repost/follow toggle mutations.
// Each relation kind shares one code path so the atomicity and
// no-self-notification rules cannot drift between kinds: the relation insert
// and its notification commit in a single transaction, removal never touches
// notifications, and toggling is idempotent over two calls.
//
// The service holds the *gorm.DB directly because the relation write and the
// notification write must share a transaction.
type EngagementService struct {
	db       *gorm.DB
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	events   *realtime.Notifier
}

// NewEngagementService returns a new EngagementService. events may be nil
// when no realtime transport is configured.
func NewEngagementService(db *gorm.DB, postRepo repository.PostRepository, userRepo repository.UserRepository, events *realtime.Notifier) *EngagementService {
	return &EngagementService{
		db:       db,
		postRepo: postRepo,
		userRepo: userRepo,
		events:   events,
	}
}

// relationToggle parameterizes the shared toggle path over a relation kind.
type relationToggle struct {
	kind    string // metrics label
	ownerID uint   // notification recipient
	exists  func(tx *gorm.DB) (bool, error)
	create  func(tx *gorm.DB) error
	remove  func(tx *gorm.DB) error
	notify  func() *models.Notification
}

func (s *EngagementService) toggle(ctx context.Context, actorID uint, t relationToggle) (*ToggleResult, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := t.exists(tx)
		if err != nil {
			return err
		}

		if exists {
			return t.remove(tx)
		}

		if err := t.create(tx); err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("Already exists", err)
			}
			return err
		}
		if actorID != t.ownerID {
			n := t.notify()
			if err := tx.Create(n).Error; err != nil {
				return err
			}
			observability.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "removed"
	if created {
		action = "created"
	}
	observability.EngagementToggles.WithLabelValues(t.kind, action).Inc()

	if created && actorID != t.ownerID {
		signalNotificationCreated(ctx, s.events, t.ownerID)
	}

	return &ToggleResult{Created: created}, nil
}

// signalNotificationCreated drops the recipient's cached notification list and
// pushes the realtime event after a notification row commits. Every path that
// writes a notification goes through here so recipients see the same staleness
// window regardless of the triggering mutation.
func signalNotificationCreated(ctx context.Context, events *realtime.Notifier, recipientID uint) {
	cache.InvalidateNotifications(ctx, recipientID)
	if events != nil {
		events.PublishUser(ctx, recipientID, realtime.EventNotificationCreated, nil)
	}
}

// ToggleLike flips the like relation between actor and post. On creation the
// post's author is notified unless the actor likes their own post.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID, postID uint) (*ToggleResult, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	result, err := s.toggle(ctx, actorID, relationToggle{
		kind:    "like",
		ownerID: authorID,
		exists: func(tx *gorm.DB) (bool, error) {
			var count int64
			err := tx.Model(&models.Like{}).
				Where("user_id = ? AND post_id = ?", actorID, postID).
				Count(&count).Error
			return count > 0, err
		},
		create: func(tx *gorm.DB) error {
			return tx.Create(&models.Like{UserID: actorID, PostID: postID}).Error
		},
		remove: func(tx *gorm.DB) error {
			return tx.Where("user_id = ? AND post_id = ?", actorID, postID).
				Delete(&models.Like{}).Error
		},
		notify: func() *models.Notification {
			return &models.Notification{
				Type:      models.NotificationLike,
				UserID:    authorID,
				CreatorID: actorID,
				PostID:    &postID,
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.signalPostChanged(ctx, postID)
	return result, nil
}

// ToggleRepost flips the plain-reshare relation between actor and post.
// Quote reposts are not toggles; see RepostService.CreateQuote.
func (s *EngagementService) ToggleRepost(ctx context.Context, actorID, postID uint) (*ToggleResult, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	result, err := s.toggle(ctx, actorID, relationToggle{
		kind:    "repost",
		ownerID: authorID,
		exists: func(tx *gorm.DB) (bool, error) {
			var count int64
			err := tx.Model(&models.Repost{}).
				Where("user_id = ? AND post_id = ?", actorID, postID).
				Count(&count).Error
			return count > 0, err
		},
		create: func(tx *gorm.DB) error {
			return tx.Create(&models.Repost{UserID: actorID, PostID: postID}).Error
		},
		remove: func(tx *gorm.DB) error {
			return tx.Where("user_id = ? AND post_id = ?", actorID, postID).
				Delete(&models.Repost{}).Error
		},
		notify: func() *models.Notification {
			return &models.Notification{
				Type:      models.NotificationRepost,
				UserID:    authorID,
				CreatorID: actorID,
				PostID:    &postID,
			}
		},
	})
	if err != nil {
		return nil, err
	}

	s.signalPostChanged(ctx, postID)
	return result, nil
}

// ToggleFollow flips the follow relation from actor to target. The target is
// the notification recipient; following yourself is rejected outright.
func (s *EngagementService) ToggleFollow(ctx context.Context, actorID, targetUserID uint) (*ToggleResult, error) {
	if actorID == targetUserID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	result, err := s.toggle(ctx, actorID, relationToggle{
		kind:    "follow",
		ownerID: targetUserID,
		exists: func(tx *gorm.DB) (bool, error) {
			var count int64
			err := tx.Model(&models.Follow{}).
				Where("follower_id = ? AND following_id = ?", actorID, targetUserID).
				Count(&count).Error
			return count > 0, err
		},
		create: func(tx *gorm.DB) error {
			return tx.Create(&models.Follow{FollowerID: actorID, FollowingID: targetUserID}).Error
		},
		remove: func(tx *gorm.DB) error {
			return tx.Where("follower_id = ? AND following_id = ?", actorID, targetUserID).
				Delete(&models.Follow{}).Error
		},
		notify: func() *models.Notification {
			return &models.Notification{
				Type:      models.NotificationFollow,
				UserID:    targetUserID,
				CreatorID: actorID,
			}
		},
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, targetUserID, target.Username)
	return result, nil
}

func (s *EngagementService) signalPostChanged(ctx context.Context, postID uint) {
	cache.InvalidatePost(ctx, postID)
	if s.events != nil {
		s.events.PublishFeedChanged(ctx, postID)
	}
}

// isDuplicateKey reports whether err is a unique-constraint violation. The
// postgres and sqlite drivers translate to gorm.ErrDuplicatedKey when
// TranslateError is enabled; the string check covers untranslated paths.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
