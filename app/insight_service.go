package app

import (
	"context"
	"time"

	"data4viz/domain/insight"
	"data4viz/internal"
	"data4viz/internal/errors"
	"data4viz/ports"
)

// InsightService orchestrates one decision-driven EDA run: compute
// statistics, ask the LLM for candidate insights, validate and re-rank
// them, and persist the snapshot. The validator is the only part with
// decision authority; everything else here is plumbing between
// collaborators.
type InsightService struct {
	datasets  ports.DatasetStore
	engine    ports.StatisticsEngine
	generator ports.InsightGenerator
	snapshots ports.SnapshotStore
	log       *internal.Logger
}

// NewInsightService wires the service's collaborators
func NewInsightService(
	datasets ports.DatasetStore,
	engine ports.StatisticsEngine,
	generator ports.InsightGenerator,
	snapshots ports.SnapshotStore,
	log *internal.Logger,
) *InsightService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &InsightService{
		datasets:  datasets,
		engine:    engine,
		generator: generator,
		snapshots: snapshots,
		log:       log,
	}
}

// ComputeStats loads a dataset and computes its decision-EDA summary
// without touching the LLM or storage
func (s *InsightService) ComputeStats(ctx context.Context, workspaceID, datasetID, decisionMetric string) (*insight.BackendStatistics, error) {
	table, err := s.datasets.Load(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeDecisionStats(table, decisionMetric)
}

// GenerateInsights runs the full pipeline and persists the result. The
// saved snapshot fully replaces the previous latest one for the same
// (workspace, dataset, metric) key. A snapshot with zero insights is a
// valid outcome: it means nothing the model proposed was statistically
// defensible, and callers should present it as such rather than as an
// empty success.
func (s *InsightService) GenerateInsights(ctx context.Context, workspaceID, datasetID, decisionMetric string) (*ports.Snapshot, error) {
	table, err := s.datasets.Load(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, err
	}

	stats, err := s.engine.ComputeDecisionStats(table, decisionMetric)
	if err != nil {
		return nil, err
	}

	raw, err := s.generator.GenerateInsights(ctx, stats)
	if err != nil {
		return nil, errors.Wrap(err, "insight generation failed")
	}

	validated := insight.ValidateAndFilterInsights(raw, *stats, table.Schema())
	s.log.Info("[InsightService] validated %d of %d proposed insights for %s/%s metric=%s",
		len(validated), len(raw), workspaceID, datasetID, decisionMetric)
	if len(validated) == 0 {
		s.log.Warn("[InsightService] no statistically defensible insights for %s/%s metric=%s",
			workspaceID, datasetID, decisionMetric)
	}

	hash, err := s.datasets.Hash(ctx, workspaceID, datasetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash dataset")
	}

	key := ports.SnapshotKey{WorkspaceID: workspaceID, DatasetID: datasetID, DecisionMetric: decisionMetric}
	snap := &ports.Snapshot{
		WorkspaceID:    workspaceID,
		DatasetID:      datasetID,
		DecisionMetric: decisionMetric,
		DatasetHash:    hash,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		BackendStats:   stats,
		Insights:       validated,
	}
	if _, err := s.snapshots.Save(ctx, key, snap); err != nil {
		return nil, errors.Wrap(err, "failed to save insight snapshot")
	}
	return snap, nil
}

// LatestSnapshot returns the stored snapshot for a key, plus whether the
// dataset content changed since it was generated
func (s *InsightService) LatestSnapshot(ctx context.Context, workspaceID, datasetID, decisionMetric string) (*ports.Snapshot, bool, error) {
	key := ports.SnapshotKey{WorkspaceID: workspaceID, DatasetID: datasetID, DecisionMetric: decisionMetric}
	snap, err := s.snapshots.LoadLatest(ctx, key)
	if err != nil {
		return nil, false, err
	}

	stale := false
	if hash, err := s.datasets.Hash(ctx, workspaceID, datasetID); err == nil {
		stale = hash != snap.DatasetHash
	} else {
		// Dataset gone or unreadable: the snapshot is stale by definition
		stale = true
	}
	return snap, stale, nil
}

// DeleteSnapshots removes every stored version for a key
func (s *InsightService) DeleteSnapshots(ctx context.Context, workspaceID, datasetID, decisionMetric string) error {
	key := ports.SnapshotKey{WorkspaceID: workspaceID, DatasetID: datasetID, DecisionMetric: decisionMetric}
	return s.snapshots.Delete(ctx, key)
}
