// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"testing"

	"pulse/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory SQLite database with the full schema
// applied. Each call gets its own private database; it is closed when the
// test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// An in-memory database exists per connection; pin the pool to one so
	// every statement sees the same schema and data.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
