package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeed returns the composed home timeline: original posts interleaved with
// reposts, newest first. Authenticated viewers get their liked/reposted flags
// filled in.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	pagination := parsePagination(c, 50)
	userID := currentUserID(c)

	items, err := s.feedService.GetFeed(c.UserContext(), pagination.Limit, pagination.Offset, userID)
	if err != nil {
		return respondReadError(c, err)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}
