// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	database "portfolio_backend/internals/databases"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory SQLite database private to t.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to ":memory:" is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close(db) })

	if err := database.Migrate(db, models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
