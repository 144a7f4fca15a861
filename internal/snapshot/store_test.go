package snapshot

import (
	"context"
	"testing"

	"data4viz/domain/insight"
	"data4viz/internal/errors"
	"data4viz/ports"

	"github.com/stretchr/testify/require"
)

func testKey() ports.SnapshotKey {
	return ports.SnapshotKey{
		WorkspaceID:    "ws-1",
		DatasetID:      "sales.csv",
		DecisionMetric: "revenue",
	}
}

func testSnapshot(factor string) *ports.Snapshot {
	return &ports.Snapshot{
		WorkspaceID:    "ws-1",
		DatasetID:      "sales.csv",
		DecisionMetric: "revenue",
		DatasetHash:    "abc123",
		CreatedAt:      "2026-01-15T10:00:00Z",
		Insights: []insight.ValidatedInsight{
			{Rank: 1, Factor: factor, WhyItMatters: "strong association", Confidence: insight.ConfidenceHigh},
		},
	}
}

func TestStore_SaveAssignsVersions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	v1, err := store.Save(ctx, testKey(), testSnapshot("marketing_spend"))
	require.NoError(t, err)
	require.Equal(t, 1, v1)

	v2, err := store.Save(ctx, testKey(), testSnapshot("region"))
	require.NoError(t, err)
	require.Equal(t, 2, v2)

	versions, err := store.Versions(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, versions)
}

func TestStore_LatestIsFullyReplaced(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, testKey(), testSnapshot("marketing_spend"))
	require.NoError(t, err)
	_, err = store.Save(ctx, testKey(), testSnapshot("region"))
	require.NoError(t, err)

	latest, err := store.LoadLatest(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, 2, latest.Version)
	require.Len(t, latest.Insights, 1)
	require.Equal(t, "region", latest.Insights[0].Factor)

	// The old version stays addressable; latest never merges with it
	old, err := store.LoadVersion(ctx, testKey(), 1)
	require.NoError(t, err)
	require.Equal(t, "marketing_spend", old.Insights[0].Factor)
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadLatest(context.Background(), testKey())
	require.Error(t, err)
	require.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestStore_Delete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, testKey(), testSnapshot("marketing_spend"))
	require.NoError(t, err)
	_, err = store.Save(ctx, testKey(), testSnapshot("region"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, testKey()))

	versions, err := store.Versions(ctx, testKey())
	require.NoError(t, err)
	require.Empty(t, versions)

	_, err = store.LoadLatest(ctx, testKey())
	require.Error(t, err)
}

func TestStore_KeysAreIsolated(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	otherMetric := testKey()
	otherMetric.DecisionMetric = "units_sold"

	_, err = store.Save(ctx, testKey(), testSnapshot("marketing_spend"))
	require.NoError(t, err)
	_, err = store.Save(ctx, otherMetric, testSnapshot("region"))
	require.NoError(t, err)

	versions, err := store.Versions(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, []int{1}, versions)

	latest, err := store.LoadLatest(ctx, testKey())
	require.NoError(t, err)
	require.Equal(t, "marketing_spend", latest.Insights[0].Factor)
}
