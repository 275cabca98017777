// Package validation holds input validation rules shared across services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxPostContentLength is the upper bound on post content, enforced
// server-side regardless of what clients validate.
const MaxPostContentLength = 1000

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,24}$`)

var reservedUsernames = map[string]struct{}{
	"admin":   {},
	"api":     {},
	"auth":    {},
	"feed":    {},
	"me":      {},
	"posts":   {},
	"saved":   {},
	"users":   {},
	"metrics": {},
	"health":  {},
	"login":   {},
}

// NormalizePostContent trims a post body and validates it against the
// content rules. Returns the canonical content to store.
func NormalizePostContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", fmt.Errorf("content is required")
	}
	if len(content) > MaxPostContentLength {
		return "", fmt.Errorf("content exceeds the %d character maximum", MaxPostContentLength)
	}
	return content, nil
}

// ValidateUsername validates a handle's format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-24 characters and contain only lowercase letters, numbers, and underscores")
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return fmt.Errorf("username cannot start or end with an underscore")
	}
	if _, exists := reservedUsernames[username]; exists {
		return fmt.Errorf("username is reserved")
	}
	return nil
}
