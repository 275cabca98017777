package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pulse/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedHeadKey caches the unannotated first page of the "all" feed, the
	// single hottest query in the system. Viewer-specific liked/saved flags
	// are layered on after the cache read, so one entry serves every viewer.
	//
	// Only post create/delete invalidates this entry. Like/reply counters
	// baked into the cached rows may lag behind toggles by up to FeedTTL;
	// invalidating on every toggle would evict the entry on nearly every
	// write to a hot feed.
	FeedHeadKey = "feed:all:head"

	FeedTTL = 1 * time.Minute
)

// PostRepliesKey returns the cache key for the first page of a post's replies.
func PostRepliesKey(postID uint) string {
	return fmt.Sprintf("post:%d:replies", postID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found
// or the cache is unavailable.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		observability.RecordCacheLookup("miss")
		return false, nil
	}
	if err != nil {
		observability.RecordCacheLookup("error")
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		observability.RecordCacheLookup("error")
		return false, err
	}
	observability.RecordCacheLookup("hit")
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on miss it calls fetch (which must write into
// dest) and stores the result with ttl. Cache errors degrade to a plain
// fetch, they never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a key. Safe to call when the cache is down.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeed drops the cached feed head. Called on every post
// create/delete so the cache never serves a stale first page longer
// than its TTL.
func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, FeedHeadKey)
}
