package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id, returning the user's profile,
// follow counts and whether the current viewer follows them.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	followers, following, err := s.followService.FollowCounts(c.Context(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	isFollowedByMe, err := s.followService.IsFollowing(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":              user,
		"follower_count":    followers,
		"following_count":   following,
		"is_followed_by_me": isFollowedByMe,
	})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	posts, err := s.feedService.GetUserPosts(c.Context(), currentUser(c), id, page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowStatus handles GET /api/users/:id/follow. Anonymous viewers get
// false rather than an error.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.followService.IsFollowing(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// ToggleFollow handles POST /api/users/:id/follow and returns the resulting state.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.followService.ToggleFollow(c.Context(), currentUser(c), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	followers, err := s.followService.GetFollowers(c.Context(), currentUser(c), id, page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(followers)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePage(c)
	following, err := s.followService.GetFollowing(c.Context(), currentUser(c), id, page.Cursor, page.Limit)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(following)
}
