package service

import (
	"context"

	"nex/internal/cache"
	"nex/internal/models"
	"nex/internal/observability"
	"nex/internal/realtime"
	"nex/internal/repository"

	"gorm.io/gorm"
)

// RepostService handles quote reposts and repost reads. Plain reshare
// toggling lives in EngagementService; a quote is not a toggle, it always
// attempts an insert and surfaces the unique-pair conflict to the caller.
type RepostService struct {
	db         *gorm.DB
	postRepo   repository.PostRepository
	repostRepo repository.RepostRepository
	events     *realtime.Notifier
}

// NewRepostService returns a new RepostService.
func NewRepostService(db *gorm.DB, postRepo repository.PostRepository, repostRepo repository.RepostRepository, events *realtime.Notifier) *RepostService {
	return &RepostService{
		db:         db,
		postRepo:   postRepo,
		repostRepo: repostRepo,
		events:     events,
	}
}

// CreateQuote persists a quote repost of the given post with the actor's
// commentary, notifying the post's author unless the actor quotes their own
// post. A second repost of the same post by the same user is a conflict.
func (s *RepostService) CreateQuote(ctx context.Context, actorID, postID uint, content, imageURL string) (*models.Repost, error) {
	trimmed, err := validateBody(content, imageURL)
	if err != nil {
		return nil, err
	}

	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	repost := &models.Repost{
		UserID:   actorID,
		PostID:   postID,
		Content:  trimmed,
		ImageURL: imageURL,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repost).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("You have already reposted this post", err)
			}
			return err
		}
		if actorID == authorID {
			return nil
		}
		n := &models.Notification{
			Type:      models.NotificationCited,
			UserID:    authorID,
			CreatorID: actorID,
			PostID:    &postID,
			RepostID:  &repost.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		observability.NotificationsCreated.WithLabelValues(string(models.NotificationCited)).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	if s.events != nil {
		s.events.PublishFeedChanged(ctx, postID)
	}
	if actorID != authorID {
		signalNotificationCreated(ctx, s.events, authorID)
	}
	return s.repostRepo.GetByID(ctx, repost.ID)
}

// DeleteRepost removes the caller's repost of the given post, whether plain
// or quote. Having none is a not-found, not a no-op.
func (s *RepostService) DeleteRepost(ctx context.Context, actorID, postID uint) error {
	repost, err := s.repostRepo.GetByUserAndPost(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if repost == nil {
		return models.NewNotFoundError("Repost", postID)
	}
	if err := s.repostRepo.DeleteByID(ctx, repost.ID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	if s.events != nil {
		s.events.PublishFeedChanged(ctx, postID)
	}
	return nil
}

// GetReposts returns a page of reposts, newest first.
func (s *RepostService) GetReposts(ctx context.Context, limit, offset int) ([]*models.Repost, error) {
	return s.repostRepo.List(ctx, limit, offset)
}

// GetRepost returns a single repost with its original post and comments.
func (s *RepostService) GetRepost(ctx context.Context, id uint) (*models.Repost, error) {
	return s.repostRepo.GetByID(ctx, id)
}
