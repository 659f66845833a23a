package server

import (
	"github.com/gofiber/fiber/v2"
)

type markReadRequest struct {
	IDs []uint `json:"ids"`
}

// GetNotifications returns a page of the current user's notifications with
// the unread total.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	list, err := s.notificationService.List(c.UserContext(), currentUserID(c), pagination.Limit, pagination.Offset)
	if err != nil {
		return respondReadError(c, err)
	}
	return c.JSON(list)
}

// MarkNotificationsRead acknowledges the given notifications for the current
// user.
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return mutationFailed(c, errInvalidBody)
	}

	updated, err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), req.IDs)
	if err != nil {
		return mutationFailed(c, err)
	}
	return mutationOK(c, fiber.Map{"updated": updated})
}
