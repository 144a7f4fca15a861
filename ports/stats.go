package ports

import (
	"data4viz/domain/dataset"
	"data4viz/domain/insight"
)

// StatisticsEngine computes the decision-driven EDA summary for a dataset
// and a chosen numeric decision metric. Implementations must be
// deterministic for a given table.
type StatisticsEngine interface {
	ComputeDecisionStats(table *dataset.Table, decisionMetric string) (*insight.BackendStatistics, error)
}
