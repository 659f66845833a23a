package service

import (
	"context"
	"strings"

	"nex/internal/models"
	"nex/internal/realtime"
	"nex/internal/repository"
)

const maxPostLength = 2000

// PostService handles post business logic.
type PostService struct {
	postRepo repository.PostRepository
	events   *realtime.Notifier
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, events *realtime.Notifier) *PostService {
	return &PostService{postRepo: postRepo, events: events}
}

// validateBody enforces the shared content rule for posts, comments and
// quotes: trimmed text or an image, at least one of the two.
func validateBody(content, imageURL string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" && imageURL == "" {
		return "", models.NewValidationError("Content or image is required")
	}
	if len(trimmed) > maxPostLength {
		return "", models.NewValidationError("Content is too long")
	}
	return trimmed, nil
}

// CreatePost validates and persists a new post by the given author.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, content, imageURL string) (*models.Post, error) {
	trimmed, err := validateBody(content, imageURL)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Content:  trimmed,
		ImageURL: imageURL,
		UserID:   authorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishFeedChanged(ctx, post.ID)
	}
	return s.postRepo.GetByID(ctx, post.ID, authorID)
}

// GetPosts returns a page of posts, newest first.
func (s *PostService) GetPosts(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

// GetPost returns a single post with comments and per-viewer flags.
func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

// DeletePost removes a post after checking the caller is its author. The
// repository cascades the delete to likes, reposts, comments and
// notifications that reference the post.
func (s *PostService) DeletePost(ctx context.Context, id uint, callerID uint) error {
	authorID, err := s.postRepo.GetAuthorID(ctx, id)
	if err != nil {
		return err
	}
	if authorID != callerID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		s.events.PublishFeedChanged(ctx, id)
	}
	return nil
}

// GetUserPosts returns a page of posts authored by the given user.
func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
}

// GetLikedPosts returns a page of posts the given user has liked, most
// recently liked first.
func (s *PostService) GetLikedPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.GetLikedByUser(ctx, userID, limit, offset, currentUserID)
}
