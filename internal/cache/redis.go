// Package cache provides the Redis-backed read cache for feed heads and
// reply pages. The cache is strictly an optimization: every helper degrades
// to a no-op when Redis is unreachable, and no write path depends on it.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"pulse/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// metricsHook counts failed commands so a flapping cache shows up on the
// dashboard instead of only as slower feed reads. redis.Nil is a miss, not
// an error.
type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects the package client. addr may be a redis:// URL or a
// bare host:port. Any failure leaves the client nil and the application
// running uncached; the rate limiter then fails open and readiness reports
// redis as unavailable without going unready.
func InitRedis(addr string) {
	opts, err := parseAddr(addr)
	if err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		client = nil
		return
	}

	log.Println("Redis connected successfully")
	client = c
}

func parseAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// SetClient overrides the Redis client. Intended for tests (miniredis).
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance, nil when uncached.
func GetClient() *redis.Client {
	return client
}
