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

// CommentService handles comment creation and deletion. Creation writes the
// comment and the author's notification in one transaction, so it holds the
// *gorm.DB like EngagementService does.
type CommentService struct {
	db          *gorm.DB
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	events      *realtime.Notifier
}

// NewCommentService returns a new CommentService.
func NewCommentService(db *gorm.DB, postRepo repository.PostRepository, commentRepo repository.CommentRepository, events *realtime.Notifier) *CommentService {
	return &CommentService{
		db:          db,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		events:      events,
	}
}

// CreateComment validates and persists a comment on the given post, notifying
// the post's author unless they are the commenter.
func (s *CommentService) CreateComment(ctx context.Context, actorID, postID uint, content, imageURL string) (*models.Comment, error) {
	trimmed, err := validateBody(content, imageURL)
	if err != nil {
		return nil, err
	}

	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  trimmed,
		ImageURL: imageURL,
		UserID:   actorID,
		PostID:   postID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if actorID == authorID {
			return nil
		}
		n := &models.Notification{
			Type:      models.NotificationComment,
			UserID:    authorID,
			CreatorID: actorID,
			PostID:    &postID,
			CommentID: &comment.ID,
		}
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		observability.NotificationsCreated.WithLabelValues(string(models.NotificationComment)).Inc()
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
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetComments returns a post's comments, oldest first.
func (s *CommentService) GetComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment removes a comment after checking the caller wrote it.
func (s *CommentService) DeleteComment(ctx context.Context, id uint, callerID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
