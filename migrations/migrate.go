// Package migrations holds the goose schema migrations for the MySQL store.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Run executes a goose command (up, down, status, redo, reset, version)
// against db using the migrations registered in this package.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	return RunDir(ctx, db, "migrations", command, args...)
}

// RunDir is Run with an explicit migrations directory.
func RunDir(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
