package migration

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/vibast-solutions/ms-go-user/config"
)

const dir = "sql"

//go:embed sql/*.sql
var files embed.FS

// Dialect maps a database/sql driver name onto the goose dialect.
func Dialect(driverName string) (goose.Dialect, error) {
	switch driverName {
	case config.DriverMySQL:
		return goose.DialectMySQL, nil
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driverName)
	}
}

func newProvider(db *sql.DB, driverName string) (*goose.Provider, error) {
	dialect, err := Dialect(driverName)
	if err != nil {
		return nil, err
	}

	migrations, err := fs.Sub(files, dir)
	if err != nil {
		return nil, err
	}

	return goose.NewProvider(dialect, db, migrations, goose.WithDisableGlobalRegistry(true))
}

func Up(ctx context.Context, db *sql.DB, driverName string) ([]*goose.MigrationResult, error) {
	provider, err := newProvider(db, driverName)
	if err != nil {
		return nil, err
	}
	return provider.Up(ctx)
}

func Down(ctx context.Context, db *sql.DB, driverName string) (*goose.MigrationResult, error) {
	provider, err := newProvider(db, driverName)
	if err != nil {
		return nil, err
	}
	return provider.Down(ctx)
}

func Status(ctx context.Context, db *sql.DB, driverName string) ([]*goose.MigrationStatus, error) {
	provider, err := newProvider(db, driverName)
	if err != nil {
		return nil, err
	}
	return provider.Status(ctx)
}
