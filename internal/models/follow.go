package models

import (
	"time"
)

// Follow is a directed edge in the social graph. At most one row may exist
// per ordered (follower, followed) pair; self-follows are rejected before
// insert. Follower/following counts are computed from these rows on demand,
// there is no denormalized counter for them.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
