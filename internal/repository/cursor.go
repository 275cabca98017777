// Package repository provides data access layer implementations for the application.
package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pulse/internal/models"
)

// Cursor is a keyset position in a result set ordered by
// (created_at DESC, id DESC). The id component breaks ties between rows
// with identical timestamps, so pagination never skips or repeats a row
// even when new rows are inserted mid-traversal.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// EncodeCursor serializes a cursor into the opaque token handed to clients.
// The timestamp is encoded at full nanosecond precision: sqlite stores
// nanosecond timestamps, and a truncated cursor would make rows inside the
// truncated tail compare wrongly on the next page.
func EncodeCursor(c Cursor) string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a client-supplied cursor token. An empty token means
// "start from the top" and returns nil. Malformed tokens fail validation
// rather than silently restarting the feed.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, models.NewValidationError("Invalid cursor")
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, models.NewValidationError("Invalid cursor")
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, models.NewValidationError("Invalid cursor")
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, models.NewValidationError("Invalid cursor")
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: uint(id)}, nil
}
