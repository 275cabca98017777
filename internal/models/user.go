// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is the internal record for an identity-provider principal. It is
// created on first login and refreshed on subsequent logins; it is never
// deleted by the application.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PrincipalID string    `gorm:"uniqueIndex;not null" json:"principal_id"`
	Name        string    `json:"name"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Avatar      string    `json:"avatar"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Principal is the authenticated identity asserted by the external identity
// provider for the current request. The server trusts these claims; it never
// verifies credentials itself.
type Principal struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}
