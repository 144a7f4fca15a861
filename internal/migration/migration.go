package migration

import (
	"context"

	"data4viz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createWorkspacesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create workspaces table")
	}
	return nil
}

func (r *MigrationRunner) createWorkspacesTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}
