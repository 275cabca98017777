package models

import (
	"time"
)

// Like is a pure join row: its existence IS the "viewer has liked" state.
// At most one row may exist per (post, user) pair.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Save has the same shape and invariants as Like but an independent
// lifecycle, and no denormalized counter on Post.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saves_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saves_post_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
