package ports

import (
	"context"
	"io"

	"data4viz/domain/dataset"
	"data4viz/domain/insight"
	"data4viz/domain/workspace"
)

// SnapshotKey identifies one insight snapshot. Regeneration for the same
// key fully replaces the previous latest snapshot.
type SnapshotKey struct {
	WorkspaceID    string
	DatasetID      string
	DecisionMetric string
}

// Snapshot is the persisted output of one insight generation run
type Snapshot struct {
	Version        int                        `json:"version"`
	WorkspaceID    string                     `json:"workspace_id"`
	DatasetID      string                     `json:"dataset_id"`
	DecisionMetric string                     `json:"decision_metric"`
	DatasetHash    string                     `json:"dataset_hash"`
	CreatedAt      string                     `json:"created_at"`
	BackendStats   *insight.BackendStatistics `json:"backend_stats"`
	Insights       []insight.ValidatedInsight `json:"insights"`
}

// SnapshotStore persists insight snapshots per workspace
type SnapshotStore interface {
	Save(ctx context.Context, key SnapshotKey, snap *Snapshot) (int, error)
	LoadLatest(ctx context.Context, key SnapshotKey) (*Snapshot, error)
	LoadVersion(ctx context.Context, key SnapshotKey, version int) (*Snapshot, error)
	Versions(ctx context.Context, key SnapshotKey) ([]int, error)
	Delete(ctx context.Context, key SnapshotKey) error
}

// DatasetStore manages workspace-scoped dataset files
type DatasetStore interface {
	Save(ctx context.Context, workspaceID, name string, r io.Reader) (*dataset.Info, error)
	Load(ctx context.Context, workspaceID, name string) (*dataset.Table, error)
	List(ctx context.Context, workspaceID string) ([]dataset.Info, error)
	Delete(ctx context.Context, workspaceID, name string) error
	Hash(ctx context.Context, workspaceID, name string) (string, error)
}

// WorkspaceRepository manages workspace records
type WorkspaceRepository interface {
	Create(ctx context.Context, name string) (*workspace.Workspace, error)
	GetByID(ctx context.Context, id string) (*workspace.Workspace, error)
	List(ctx context.Context) ([]workspace.Workspace, error)
	Delete(ctx context.Context, id string) error
}
