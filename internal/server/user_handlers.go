package server

import (
	"nex/internal/featureflags"
	"nex/internal/models"
	"nex/internal/service"

	"github.com/gofiber/fiber/v2"
)

type syncMeRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

// SyncMe upserts the local account for the authenticated identity-provider
// subject. Clients call this once after sign-in.
func (s *Server) SyncMe(c *fiber.Ctx) error {
	externalID, _ := c.Locals("externalID").(string)
	if externalID == "" {
		return anonymousNoop(c)
	}

	var req syncMeRequest
	if err := c.BodyParser(&req); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	user, err := s.userService.SyncUser(c.UserContext(), externalID, req.Username, req.Name, req.Image)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"user": user})
}

// GetMe returns the current user's account.
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe applies profile changes to the current user's account.
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var update service.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), currentUserID(c), update)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"user": user})
}

// GetProfile returns a profile by username with counts and the viewer's
// follow state.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, following, err := s.userService.GetProfile(c.UserContext(), username, currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":      user,
		"following": following,
	})
}

// ToggleFollow flips the current user's follow of another user.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return anonymousNoop(c)
	}

	targetID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	result, err := s.engagementService.ToggleFollow(c.UserContext(), userID, targetID)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"created": result.Created})
}

// GetSuggestedUsers returns a few accounts the current user might follow.
func (s *Server) GetSuggestedUsers(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if !s.featureFlags.Enabled(featureflags.FlagWhoToFollow, userID) {
		return c.JSON(fiber.Map{"users": []models.User{}})
	}

	users, err := s.userService.GetSuggestions(c.UserContext(), userID)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowers returns the accounts following the given user.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	users, err := s.userService.GetFollowers(c.UserContext(), id)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing returns the accounts the given user follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	users, err := s.userService.GetFollowing(c.UserContext(), id)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFeatureFlags returns the evaluated feature flags for the current viewer.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.Snapshot(currentUserID(c))})
}
