package server

import (
	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreateComment adds a comment to a post by the current user.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), currentUserID(c), postID, req.Content, req.ImageURL)
	if err != nil {
		return mutationFailed(c, err)
	}

	c.Status(fiber.StatusCreated)
	return mutationOK(c, fiber.Map{"comment": comment})
}

// GetComments returns a post's comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comments, err := s.commentService.GetComments(c.UserContext(), postID)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// DeleteComment deletes the current user's own comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), id, currentUserID(c)); err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, nil)
}
