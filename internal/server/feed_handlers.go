package server

import (
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?variant=all|following&cursor=...&limit=...
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePage(c)
	feed, err := s.feedService.GetFeed(c.Context(), c.Query("variant"), currentUser(c), page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// SearchPosts handles GET /api/posts/search?q=...&cursor=...&limit=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	page := parsePage(c)
	results, err := s.feedService.SearchPosts(c.Context(), currentUser(c), q, page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(results)
}
