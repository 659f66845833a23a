package service

import (
	"context"
	"errors"
	"strings"

	"nex/internal/cache"
	"nex/internal/models"
	"nex/internal/repository"
)

const suggestionCount = 3

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Website  *string `json:"website"`
	Image    *string `json:"image"`
}

// UserService handles account sync, profiles and follow suggestions.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// SyncUser upserts the local account for an identity-provider subject. Called
// on first authenticated request after sign-in; existing accounts get their
// display fields refreshed from the provider.
func (s *UserService) SyncUser(ctx context.Context, externalID, username, name, image string) (*models.User, error) {
	if externalID == "" {
		return nil, models.NewValidationError("External ID is required")
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			return nil, err
		}
		user = &models.User{
			ExternalID: externalID,
			Username:   username,
			Name:       name,
			Image:      image,
		}
		if user.Username == "" {
			return nil, models.NewValidationError("Username is required")
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	changed := false
	if name != "" && name != user.Name {
		user.Name = name
		changed = true
	}
	if image != "" && image != user.Image {
		user.Image = image
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ResolveUserID maps an identity-provider subject to the local account id.
func (s *UserService) ResolveUserID(ctx context.Context, externalID string) (uint, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// GetProfile returns a profile by username with follower, following and post
// counts, plus whether the viewer follows them.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*models.User, bool, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(username), &user, cache.UserTTL, func() error {
		fetched, fetchErr := s.userRepo.GetByUsername(ctx, username)
		if fetchErr != nil {
			return fetchErr
		}
		user = *fetched
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	following := false
	if viewerID != 0 && viewerID != user.ID {
		following, err = s.followRepo.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			return nil, false, err
		}
	}
	return &user, following, nil
}

// GetUser returns an account by id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the given changes to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, callerID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		user.Name = trimmed
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.Location != nil {
		user.Location = strings.TrimSpace(*update.Location)
	}
	if update.Website != nil {
		user.Website = strings.TrimSpace(*update.Website)
	}
	if update.Image != nil {
		user.Image = *update.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetSuggestions returns a few random accounts the viewer does not follow
// yet, for the who-to-follow panel.
func (s *UserService) GetSuggestions(ctx context.Context, viewerID uint) ([]models.User, error) {
	return s.userRepo.GetRandomSuggestions(ctx, viewerID, suggestionCount)
}

// GetFollowers returns the accounts following the given user.
func (s *UserService) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

// GetFollowing returns the accounts the given user follows.
func (s *UserService) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}
