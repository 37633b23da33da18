package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/edusocial/edusocial/internal/config"
)

func migrationSource(path string) string {
	return "file://" + path
}

// RunMigrations applies all pending migrations and releases the migrator.
// An already up-to-date schema is not an error.
func RunMigrations(cfg config.DatabaseConfig, migrationsPath string) error {
	m, err := migrate.New(migrationSource(migrationsPath), cfg.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	upErr := m.Up()
	srcErr, dbErr := m.Close()

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", upErr)
	}
	if srcErr != nil {
		return fmt.Errorf("closing migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("closing migration connection: %w", dbErr)
	}
	return nil
}
