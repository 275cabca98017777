package models

import (
	"time"
)

// PostAuthor is the author profile attached to a feed item. It is resolved
// from the live User record at read time, not from the post's snapshot
// fields, so renamed users appear with their current profile in feeds.
type PostAuthor struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// FeedItem is a post annotated for display: author profile plus the
// requesting viewer's liked/saved flags. Author is nil when the author's
// user record no longer exists; the post is still returned.
type FeedItem struct {
	ID          uint        `json:"id"`
	Content     string      `json:"content"`
	CreatedAt   time.Time   `json:"created_at"`
	ParentID    *uint       `json:"parent_id,omitempty"`
	Author      *PostAuthor `json:"author"`
	LikeCount   int         `json:"like_count"`
	ReplyCount  int         `json:"reply_count"`
	RepostCount int         `json:"repost_count"`
	Liked       bool        `json:"liked"`
	Saved       bool        `json:"saved"`
}

// FeedPage is one page of an ordered feed. ContinueCursor is nil when IsDone;
// otherwise the caller round-trips it verbatim as the next request's cursor.
type FeedPage struct {
	Items          []FeedItem `json:"items"`
	ContinueCursor *string    `json:"continue_cursor"`
	IsDone         bool       `json:"is_done"`
}

// FollowEntry is one row of a followers/following listing: the related
// user's profile plus whether the requesting viewer follows them.
type FollowEntry struct {
	User           *PostAuthor `json:"user"`
	FollowedAt     time.Time   `json:"followed_at"`
	IsFollowedByMe bool        `json:"is_followed_by_me"`
}

// FollowPage is one page of a followers/following listing.
type FollowPage struct {
	Items          []FollowEntry `json:"items"`
	ContinueCursor *string       `json:"continue_cursor"`
	IsDone         bool          `json:"is_done"`
}
