package repositories

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"shipment-dispatch-service/internal/platform/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case db.DriverPostgres:
		return goose.DialectPostgres, nil
	case db.DriverSQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}

func newProvider(conn *sql.DB, driver string) (*goose.Provider, error) {
	if conn == nil {
		return nil, errors.New("migrations: DB is nil")
	}

	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: open embedded files: %w", err)
	}

	p, err := goose.NewProvider(dialect, conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: new provider: %w", err)
	}
	return p, nil
}

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	p, err := newProvider(conn, driver)
	if err != nil {
		return err
	}

	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Rollback reverts the last steps migrations.
func Rollback(ctx context.Context, conn *sql.DB, driver string, steps int) error {
	p, err := newProvider(conn, driver)
	if err != nil {
		return err
	}

	for range steps {
		if _, err := p.Down(ctx); err != nil {
			if errors.Is(err, goose.ErrNoNextVersion) {
				return nil
			}
			return fmt.Errorf("migrations: down: %w", err)
		}
	}
	return nil
}

// MigrationStatus describes one known migration.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

// Status lists every migration and whether it has been applied.
func Status(ctx context.Context, conn *sql.DB, driver string) ([]MigrationStatus, error) {
	p, err := newProvider(conn, driver)
	if err != nil {
		return nil, err
	}

	results, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(results))
	for _, r := range results {
		out = append(out, MigrationStatus{
			Version: r.Source.Version,
			Source:  r.Source.Path,
			Applied: r.State == goose.StateApplied,
		})
	}
	return out, nil
}
