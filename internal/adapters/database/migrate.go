package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/pkg/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// ErrDirtyDatabase is returned when a previous migration did not finish
var ErrDirtyDatabase = errors.New("database migration is dirty")

// newMigrate builds a migrate instance over the embedded scripts for the
// connection's dialect
func newMigrate(db *DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+db.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var driver migratedb.Driver
	switch db.dialect {
	case "postgres":
		driver, err = postgres.WithInstance(db.Conn(), &postgres.Config{})
	case "sqlite":
		driver, err = sqlite.WithInstance(db.Conn(), &sqlite.Config{})
	default:
		return nil, fmt.Errorf("no migration driver for dialect %q", db.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", db.dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *DB) error {
	logger.Info("running database migrations",
		zap.String("dialect", db.dialect),
	)

	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		logger.Error("database is in dirty state, refusing to migrate",
			zap.Uint("version", currentVersion),
		)
		return fmt.Errorf("%w: version %d failed part way; repair the schema and force the version manually", ErrDirtyDatabase, currentVersion)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no new migrations to apply",
				zap.Uint("version", currentVersion),
			)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	logger.Info("migrations completed successfully",
		zap.Uint("old_version", currentVersion),
		zap.Uint("new_version", newVersion),
	)

	return nil
}

// RollbackMigration rolls back the last applied migration
func RollbackMigration(db *DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	currentVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.Info("migration rolled back successfully",
		zap.Uint("from_version", currentVersion),
	)

	return nil
}

// GetMigrationVersion returns current migration version
func GetMigrationVersion(db *DB) (uint, bool, error) {
	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}

	return version, dirty, nil
}
