// Package migrations embeds the schema for every supported storage dialect.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Up applies all pending migrations of the given dialect.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	const op = "storage.migrations.Up"

	dir := "sqlite"
	if dialect == goose.DialectPostgres {
		dir = "postgres"
	}

	fsys, err := fs.Sub(FS, dir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
