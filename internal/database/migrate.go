package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taiwoajasa245/reading-engine-api/internal/database/migrations"
	"github.com/taiwoajasa245/reading-engine-api/pkg/config"
)

// Migrate applies every pending embedded migration for the service's dialect.
func Migrate(s Service) error {
	var (
		driver database.Driver
		files  fs.FS
		dir    string
		err    error
	)

	switch s.Driver() {
	case config.DriverPostgres:
		driver, err = pgxmigrate.WithInstance(s.DB(), &pgxmigrate.Config{})
		files, dir = migrations.Postgres, "postgres"
	case config.DriverSQLite:
		driver, err = sqlitemigrate.WithInstance(s.DB(), &sqlitemigrate.Config{})
		files, dir = migrations.SQLite, "sqlite"
	default:
		return fmt.Errorf("no migrations for driver %q", s.Driver())
	}
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, s.Driver(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
