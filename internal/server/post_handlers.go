package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), currentUser(c), service.CreatePostInput{
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.feedService.GetPost(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(item)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUser(c), id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ToggleLike handles POST /api/posts/:id/like and returns the resulting state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ToggleSave handles POST /api/posts/:id/save and returns the resulting state.
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	saved, err := s.postService.ToggleSave(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"saved": saved})
}

// GetReplies handles GET /api/posts/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	replies, err := s.feedService.GetReplies(c.Context(), currentUser(c), id, page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(replies)
}

// GetSavedPosts handles GET /api/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	page := parsePage(c)
	saved, err := s.feedService.GetSavedPosts(c.Context(), currentUser(c), page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(saved)
}
