package server

import (
	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// CreatePost creates a new post authored by the current user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	post, err := s.postService.CreatePost(c.UserContext(), userID, req.Content, req.ImageURL)
	if err != nil {
		return mutationFailed(c, err)
	}

	c.Status(fiber.StatusCreated)
	return mutationOK(c, fiber.Map{"post": post})
}

// GetPosts returns a page of posts, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	posts, err := s.postService.GetPosts(c.UserContext(), pagination.Limit, pagination.Offset, currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost returns a single post with its comments and viewer flags.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(post)
}

// DeletePost deletes the current user's own post and everything referencing it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, nil)
}

// ToggleLike flips the current user's like on a post.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return anonymousNoop(c)
	}

	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	result, err := s.engagementService.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"created": result.Created})
}

// GetUserPosts returns a page of posts authored by the given user.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	pagination := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.UserContext(), id, pagination.Limit, pagination.Offset, currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetLikedPosts returns a page of posts the given user has liked.
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	pagination := parsePagination(c, 20)

	posts, err := s.postService.GetLikedPosts(c.UserContext(), id, pagination.Limit, pagination.Offset, currentUserID(c))
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
