package server

import (
	"errors"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Fiber locals keys set by RequireUser/OptionalUser.
const (
	userLocal   = "user"
	userIDLocal = "userID"
)

// PageParams holds parsed cursor/limit query parameters.
type PageParams struct {
	Cursor string
	Limit  int
}

// parsePage extracts the cursor and limit query parameters. The limit is
// clamped by the service layer; this only reads it.
func parsePage(c *fiber.Ctx) PageParams {
	return PageParams{
		Cursor: c.Query("cursor"),
		Limit:  c.QueryInt("limit", service.DefaultPageSize),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentPrincipal returns the authenticated principal stored by the auth
// middleware, or nil for anonymous requests.
func currentPrincipal(c *fiber.Ctx) *models.Principal {
	if p, ok := c.Locals(middleware.PrincipalLocal).(*models.Principal); ok {
		return p
	}
	return nil
}

// currentUser returns the resolved user stored by RequireUser/OptionalUser,
// or nil for anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(userLocal).(*models.User); ok {
		return u
	}
	return nil
}

// RequireUser resolves the authenticated principal to an internal user
// record, creating it on first sight. Must run after AuthRequired.
func (s *Server) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.identityService.Resolve(c.Context(), currentPrincipal(c))
		if err != nil {
			return s.respondServiceError(c, err)
		}
		c.Locals(userLocal, user)
		c.Locals(userIDLocal, user.ID)
		return c.Next()
	}
}

// OptionalUser looks up the user for an optionally-authenticated request so
// read paths can be personalized. Unlike RequireUser it never creates a user
// record: a principal that has not logged in yet reads as anonymous.
func (s *Server) OptionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := currentPrincipal(c)
		if p == nil {
			return c.Next()
		}
		user, err := s.userRepo.GetByPrincipalID(c.Context(), p.ID)
		if err != nil {
			return c.Next()
		}
		c.Locals(userLocal, user)
		c.Locals(userIDLocal, user.ID)
		return c.Next()
	}
}

// respondServiceError maps an application error onto its HTTP status and
// writes the standard error body.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
