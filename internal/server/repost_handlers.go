package server

import (
	"nex/internal/featureflags"
	"nex/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createQuoteRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// ToggleRepost flips the current user's plain reshare of a post.
func (s *Server) ToggleRepost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return anonymousNoop(c)
	}

	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	result, err := s.engagementService.ToggleRepost(c.UserContext(), userID, id)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"created": result.Created})
}

// CreateQuote reposts a post with the current user's own commentary.
func (s *Server) CreateQuote(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if !s.featureFlags.Enabled(featureflags.FlagQuoteReposts, userID) {
		return mutationFailed(c, models.NewValidationError("Quote reposts are not available"))
	}

	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req createQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	repost, err := s.repostService.CreateQuote(c.UserContext(), userID, postID, req.Content, req.ImageURL)
	if err != nil {
		return mutationFailed(c, err)
	}

	c.Status(fiber.StatusCreated)
	return mutationOK(c, fiber.Map{"repost": repost})
}

// DeleteRepost removes the current user's repost of a post, plain or quote.
func (s *Server) DeleteRepost(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.repostService.DeleteRepost(c.UserContext(), currentUserID(c), postID); err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, nil)
}

// GetReposts returns a page of reposts, newest first.
func (s *Server) GetReposts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	reposts, err := s.repostService.GetReposts(c.UserContext(), pagination.Limit, pagination.Offset)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"reposts": reposts})
}

// GetRepost returns a single repost with its original post.
func (s *Server) GetRepost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	repost, err := s.repostService.GetRepost(c.UserContext(), id)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(repost)
}
