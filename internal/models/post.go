package models

import (
	"time"
)

// Post is a short text update, optionally a reply to another post.
//
// LikeCount, ReplyCount and RepostCount are denormalized projections of the
// likes/posts join rows. They are only ever patched with atomic SQL deltas so
// they stay in lock-step with the underlying rows under concurrent toggles.
//
// The Author* fields are a snapshot of the author's profile taken at creation
// time so feeds render without a join; they may drift if the profile later
// changes, which is accepted.
//
// Posts are hard-deleted. Replies to a deleted post keep their dangling
// ParentID; readers treat a missing parent as absent rather than failing.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	UserID         uint      `gorm:"not null;index:idx_posts_user_created,priority:1" json:"user_id"`
	ParentID       *uint     `gorm:"index" json:"parent_id,omitempty"`
	LikeCount      int       `gorm:"not null;default:0" json:"like_count"`
	ReplyCount     int       `gorm:"not null;default:0" json:"reply_count"`
	RepostCount    int       `gorm:"not null;default:0" json:"repost_count"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername string    `json:"author_username"`
	AuthorAvatar   string    `json:"author_avatar"`
	CreatedAt      time.Time `gorm:"index;index:idx_posts_user_created,priority:2" json:"created_at"`
}
