package testdb

import (
	"path/filepath"
	"testing"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/internal/adapters/database"
)

// TestDB wraps a migrated throwaway SQLite database
type TestDB struct {
	DB *database.DB
}

// Setup opens a fresh database file under t.TempDir and applies all migrations
func Setup(t *testing.T) *TestDB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	testDB := &TestDB{DB: db}

	t.Cleanup(func() {
		testDB.Teardown(t)
	})

	return testDB
}

// Teardown closes the connection; the file goes away with t.TempDir
func (tdb *TestDB) Teardown(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	}
}

// Exec executes SQL against the test database
func (tdb *TestDB) Exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()

	if _, err := tdb.DB.DB().Exec(query, args...); err != nil {
		t.Fatalf("failed to execute query: %v\nQuery: %s", err, query)
	}
}

// Count returns the number of rows in a table
func (tdb *TestDB) Count(t *testing.T, table string) int {
	t.Helper()

	var count int
	if err := tdb.DB.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}

	return count
}

// AssertCount checks the row count of a table
func (tdb *TestDB) AssertCount(t *testing.T, table string, expected int) {
	t.Helper()

	if got := tdb.Count(t, table); got != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, got)
	}
}
