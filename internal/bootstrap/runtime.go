// Package bootstrap wires the process-level runtime: database, cache and
// optional demo data. cmd/ binaries call into it so they all come up the
// same way.
package bootstrap

import (
	"fmt"
	"log"
	"strings"

	"pulse/internal/cache"
	"pulse/internal/config"
	"pulse/internal/database"
	"pulse/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates the database with demo users, posts and
	// interactions. Refused outside the development environment.
	SeedDemoData bool
	SeedOptions  seed.Options
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. Redis being unreachable is not fatal; the cache layer degrades to
// pass-through.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()
	if r == nil {
		log.Println("redis unavailable, feed caching disabled")
	}

	if opts.SeedDemoData {
		if !strings.EqualFold(cfg.Env, "development") {
			return nil, nil, fmt.Errorf("demo seeding is only allowed in development, env is %q", cfg.Env)
		}
		if err := seed.Seed(db, opts.SeedOptions); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
