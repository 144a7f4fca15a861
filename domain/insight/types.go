package insight

// FactorType tags a candidate factor as numeric or categorical
type FactorType string

const (
	FactorNumeric     FactorType = "numeric"
	FactorCategorical FactorType = "categorical"
)

// Confidence levels assigned by the validator from statistical evidence
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CorrelationRecord holds the Pearson correlation between the decision
// metric and one numeric factor
type CorrelationRecord struct {
	Factor         string     `json:"factor"`
	Correlation    float64    `json:"correlation"`
	AbsCorrelation float64    `json:"abs_correlation"`
	Type           FactorType `json:"type"`
}

// SegmentImpactRecord holds the segment-level mean spread of the decision
// metric across one categorical factor's values
type SegmentImpactRecord struct {
	Factor            string             `json:"factor"`
	MeanDifference    float64            `json:"mean_difference"`
	RelativeImpactPct float64            `json:"relative_impact_pct"`
	TopSegments       map[string]float64 `json:"top_segments,omitempty"`
	BottomSegments    map[string]float64 `json:"bottom_segments,omitempty"`
	Type              FactorType         `json:"type"`
}

// FactorSummary is a ranked candidate factor. ImpactScore is informational
// only; authoritative ranking uses the recomputed statistical value.
type FactorSummary struct {
	Factor         string     `json:"factor"`
	ImpactScore    float64    `json:"impact_score"`
	Type           FactorType `json:"type"`
	Correlation    float64    `json:"correlation,omitempty"`
	AbsCorrelation float64    `json:"abs_correlation,omitempty"`
	MeanDifference float64    `json:"mean_difference,omitempty"`
}

// MetricStats summarizes the distribution of the decision metric
type MetricStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ExcludedColumn records a column dropped from analysis and why
type ExcludedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// BackendStatistics is the full statistical summary computed for one
// (dataset, decision metric) pair. Produced by the stats engine, consumed
// by the validator and the LLM prompt.
type BackendStatistics struct {
	DecisionMetric    string                `json:"decision_metric"`
	TotalRows         int                   `json:"total_rows"`
	ValidRows         int                   `json:"valid_rows"`
	MissingPercentage float64               `json:"missing_percentage"`
	OutlierCount      int                   `json:"outlier_count"`
	OutlierPercentage float64               `json:"outlier_percentage"`
	TopFactors        []FactorSummary       `json:"top_factors"`
	AllCorrelations   []CorrelationRecord   `json:"all_correlations"`
	AllSegmentImpacts []SegmentImpactRecord `json:"all_segment_impacts"`
	ExcludedColumns   []ExcludedColumn      `json:"excluded_columns,omitempty"`
	MetricStats       MetricStats           `json:"decision_metric_stats"`
}

// RawInsight is one LLM-proposed insight. Every field is untrusted: the
// factor may be hallucinated, the rank and confidence are the model's own.
type RawInsight struct {
	Rank         int    `json:"rank"`
	Factor       string `json:"factor"`
	WhyItMatters string `json:"why_it_matters"`
	Evidence     string `json:"evidence"`
	Confidence   string `json:"confidence"`
}

// ValidatedInsight is an insight that survived every gate. Rank and
// Confidence are assigned by the validator; Factor is guaranteed to be a
// literal dataset column.
type ValidatedInsight struct {
	Rank         int        `json:"rank"`
	Factor       string     `json:"factor"`
	WhyItMatters string     `json:"why_it_matters"`
	Evidence     string     `json:"evidence"`
	Confidence   Confidence `json:"confidence"`
}
