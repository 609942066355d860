package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// Migrations ships with the binary so cmd/api and cmd/migrate do not depend on the working directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const (
	// DefaultDir is where new migrations are written and where the embedded set lives.
	DefaultDir     = "pkg/migrate/migrations"
	DefaultDialect = "postgres"

	embeddedDir = "migrations"
)

// Run executes a goose command. An empty dir runs the embedded migrations.
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	source, err := prepare(dialect, dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	source, err := prepare(dialect, dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current < target:
		err = goose.UpToContext(ctx, db, source, target)
	case current > target:
		err = goose.DownToContext(ctx, db, source, target)
	}
	if err != nil {
		return fmt.Errorf("goose migrate to %d: %w", target, err)
	}
	return nil
}

// prepare sets the goose dialect and base filesystem, returning the directory goose should read.
func prepare(dialect, dir string) (string, error) {
	if dialect == "" {
		dialect = DefaultDialect
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "" {
		goose.SetBaseFS(Migrations)
		return embeddedDir, nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}
