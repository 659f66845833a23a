package repository

import (
	"context"
	"errors"

	"nex/internal/cache"
	"nex/internal/models"

	"gorm.io/gorm"
)

// RepostRepository defines the interface for repost data operations
type RepostRepository interface {
	List(ctx context.Context, limit, offset int) ([]*models.Repost, error)
	GetByID(ctx context.Context, id uint) (*models.Repost, error)
	GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Repost, error)
	DeleteByID(ctx context.Context, id uint) error
}

type repostRepository struct {
	db *gorm.DB
}

// NewRepostRepository creates a new repost repository
func NewRepostRepository(db *gorm.DB) RepostRepository {
	return &repostRepository{db: db}
}

func (r *repostRepository) List(ctx context.Context, limit, offset int) ([]*models.Repost, error) {
	var reposts []*models.Repost
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Post").
		Preload("Post.User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reposts).Error
	return reposts, err
}

func (r *repostRepository) GetByID(ctx context.Context, id uint) (*models.Repost, error) {
	var repost models.Repost
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Post").
		Preload("Post.User").
		Preload("Post.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Post.Comments.User").
		First(&repost, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Repost", id)
		}
		return nil, err
	}
	return &repost, nil
}

func (r *repostRepository) GetByUserAndPost(ctx context.Context, userID, postID uint) (*models.Repost, error) {
	var repost models.Repost
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&repost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no repost for this pair
		}
		return nil, err
	}
	return &repost, nil
}

func (r *repostRepository) DeleteByID(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Delete(&models.Repost{}, id).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}
