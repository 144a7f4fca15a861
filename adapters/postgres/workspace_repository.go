package postgres

import (
	"context"
	"database/sql"
	stderr "errors"
	"time"

	"data4viz/domain/workspace"
	"data4viz/internal/errors"
	"data4viz/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// workspaceRepository implements ports.WorkspaceRepository on Postgres
type workspaceRepository struct {
	db *sqlx.DB
}

// NewWorkspaceRepository creates a workspace repository
func NewWorkspaceRepository(db *sqlx.DB) ports.WorkspaceRepository {
	return &workspaceRepository{db: db}
}

// Create inserts a new workspace with a generated identifier
func (r *workspaceRepository) Create(ctx context.Context, name string) (*workspace.Workspace, error) {
	if name == "" {
		return nil, errors.InvalidInput("workspace name must not be empty")
	}

	now := time.Now().UTC()
	ws := &workspace.Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO workspaces (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, ws.ID, ws.Name, ws.CreatedAt, ws.UpdatedAt); err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to create workspace")
	}
	return ws, nil
}

// GetByID retrieves a workspace by its identifier
func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*workspace.Workspace, error) {
	query := `SELECT id, name, created_at, updated_at FROM workspaces WHERE id = $1`

	var ws workspace.Workspace
	if err := r.db.GetContext(ctx, &ws, query, id); err != nil {
		if stderr.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("workspace")
		}
		return nil, errors.Wrap(err, "failed to get workspace")
	}
	return &ws, nil
}

// List returns all workspaces, newest first
func (r *workspaceRepository) List(ctx context.Context) ([]workspace.Workspace, error) {
	query := `SELECT id, name, created_at, updated_at FROM workspaces ORDER BY created_at DESC`

	workspaces := []workspace.Workspace{}
	if err := r.db.SelectContext(ctx, &workspaces, query); err != nil {
		return nil, errors.Wrap(err, "failed to list workspaces")
	}
	return workspaces, nil
}

// Delete removes a workspace record. Workspace files on disk are the
// dataset store's responsibility.
func (r *workspaceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete workspace")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NotFound("workspace")
	}
	return nil
}
