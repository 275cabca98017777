package server

import (
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login. The bearer token is the credential;
// this endpoint records the login and returns the internal user record,
// creating it on first sight.
func (s *Server) Login(c *fiber.Ctx) error {
	user, err := s.identityService.RecordLogin(c.Context(), currentPrincipal(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return s.respondServiceError(c, models.NewUnauthenticatedError(""))
	}
	return c.JSON(user)
}

// GetFeatureFlags handles GET /api/feature-flags, returning the evaluated
// flag set for the current viewer.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var viewerID uint
	if user := currentUser(c); user != nil {
		viewerID = user.ID
	}
	return c.JSON(fiber.Map{"flags": s.featureFlags.Snapshot(viewerID)})
}
