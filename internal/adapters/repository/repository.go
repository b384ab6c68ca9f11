// Package repository selects the configured database backend.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/publicvoting/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/publicvoting/internal/config"
)

func Open(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.Open(ctx, postgres.Config{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			URL:      cfg.DatabaseURL,
		})
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
}

// Migrator runs schema migrations for one backend.
type Migrator struct {
	Up     func(ctx context.Context, db *sql.DB) error
	Down   func(ctx context.Context, db *sql.DB) error
	Status func(ctx context.Context, db *sql.DB) error
}

func MigratorFor(driver string) (Migrator, error) {
	switch driver {
	case config.DriverSQLite:
		return Migrator{Up: sqlite.Migrate, Down: sqlite.Rollback, Status: sqlite.Status}, nil
	case config.DriverPostgres:
		return Migrator{Up: postgres.Migrate, Down: postgres.Rollback, Status: postgres.Status}, nil
	}
	return Migrator{}, fmt.Errorf("unsupported database driver %q", driver)
}
