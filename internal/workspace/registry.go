package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	domain "data4viz/domain/workspace"
	"data4viz/internal/errors"
	"data4viz/ports"

	"github.com/google/uuid"
)

// Registry is a file-backed workspace registry for single-node deployments
// without Postgres. The full workspace list is kept in one JSON file and
// rewritten on every mutation.
type Registry struct {
	path string

	mu         sync.Mutex
	workspaces map[string]domain.Workspace
}

// NewRegistry creates a registry persisted at <baseDir>/workspaces.json,
// loading any existing state
func NewRegistry(baseDir string) (*Registry, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create registry directory")
	}

	r := &Registry{
		path:       filepath.Join(baseDir, "workspaces.json"),
		workspaces: make(map[string]domain.Workspace),
	}

	payload, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Wrap(err, "failed to read workspace registry")
	}

	var stored []domain.Workspace
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.Wrap(err, "failed to decode workspace registry")
	}
	for _, ws := range stored {
		r.workspaces[ws.ID] = ws
	}
	return r, nil
}

var _ ports.WorkspaceRepository = (*Registry)(nil)

// Create registers a new workspace
func (r *Registry) Create(ctx context.Context, name string) (*domain.Workspace, error) {
	if name == "" {
		return nil, errors.InvalidInput("workspace name must not be empty")
	}

	now := time.Now().UTC()
	ws := domain.Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[ws.ID] = ws
	if err := r.persist(); err != nil {
		delete(r.workspaces, ws.ID)
		return nil, err
	}
	return &ws, nil
}

// GetByID returns one workspace
func (r *Registry) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	if !ok {
		return nil, errors.NotFound("workspace")
	}
	return &ws, nil
}

// List returns all workspaces, newest first
func (r *Registry) List(ctx context.Context) ([]domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a workspace record
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	if !ok {
		return errors.NotFound("workspace")
	}
	delete(r.workspaces, id)
	if err := r.persist(); err != nil {
		r.workspaces[id] = ws
		return err
	}
	return nil
}

// persist rewrites the registry file; callers hold the mutex
func (r *Registry) persist() error {
	list := make([]domain.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		list = append(list, ws)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode workspace registry")
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		return errors.Wrap(err, "failed to write workspace registry")
	}
	return nil
}
