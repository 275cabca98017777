// Package service contains the business logic for feeds, posts, follows and
// identity resolution.
package service

import (
	"context"
	"time"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

// IdentityService maps identity-provider principals onto internal user
// records. Credentials are never checked here; the principal's claims are
// already verified at the transport layer.
type IdentityService struct {
	userRepo repository.UserRepository
}

// NewIdentityService returns a new IdentityService.
func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Resolve returns the internal user for a principal, creating the record on
// first sight. Safe to call concurrently for the same principal: a lost
// create race falls back to reading the row the winner inserted.
func (s *IdentityService) Resolve(ctx context.Context, principal *models.Principal) (*models.User, error) {
	if principal == nil || principal.ID == "" {
		return nil, models.NewUnauthenticatedError("")
	}

	user, err := s.userRepo.GetByPrincipalID(ctx, principal.ID)
	if err == nil {
		return user, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	user = &models.User{
		PrincipalID: principal.ID,
		Name:        principal.Name,
		Username:    usernameOrDefault(principal),
		Avatar:      principal.Avatar,
		LastLoginAt: time.Now().UTC(),
	}
	if createErr := s.userRepo.Create(ctx, user); createErr != nil {
		// Unique-index violation means another request created the row first.
		existing, getErr := s.userRepo.GetByPrincipalID(ctx, principal.ID)
		if getErr != nil {
			return nil, createErr
		}
		return existing, nil
	}
	return user, nil
}

// RecordLogin resolves the principal and refreshes the stored profile and
// last-login timestamp. Idempotent: repeated calls for the same principal
// update the same row.
func (s *IdentityService) RecordLogin(ctx context.Context, principal *models.Principal) (*models.User, error) {
	user, err := s.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}

	if principal.Name != "" {
		user.Name = principal.Name
	}
	if principal.Avatar != "" {
		user.Avatar = principal.Avatar
	}
	user.LastLoginAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// usernameOrDefault falls back to a handle derived from the principal ID
// when the provider asserts no acceptable username: "user_" plus the ID's
// first eight characters.
func usernameOrDefault(p *models.Principal) string {
	if validation.ValidateUsername(p.Username) == nil {
		return p.Username
	}
	id := p.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}
