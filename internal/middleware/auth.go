// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strings"

	"pulse/internal/config"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// PrincipalLocal is the Fiber locals key under which the authenticated
// principal is stored for the duration of the request. The principal is
// always passed explicitly from here into services; it is never global state.
const PrincipalLocal = "principal"

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ParsePrincipal validates an identity-provider token and returns the
// principal it asserts. Credential verification happened upstream at the
// provider; this only checks the token's signature and extracts claims.
func ParsePrincipal(tokenString string) (*models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthenticatedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, models.NewUnauthenticatedError("Invalid token structure - missing subject")
	}

	p := &models.Principal{ID: sub}
	if v, ok := claims["name"].(string); ok {
		p.Name = v
	}
	if v, ok := claims["username"].(string); ok {
		p.Username = v
	}
	if v, ok := claims["avatar"].(string); ok {
		p.Avatar = v
	}
	return p, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Authorization header required"))
	}

	p, err := ParsePrincipal(tokenString)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	c.Locals(PrincipalLocal, p)
	return c.Next()
}

// AuthOptional parses the token when one is present so read paths can be
// personalized; requests without a token proceed anonymously.
func AuthOptional(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}

	if p, err := ParsePrincipal(tokenString); err == nil {
		c.Locals(PrincipalLocal, p)
	}
	return c.Next()
}
