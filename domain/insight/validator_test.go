package insight

import (
	"math"
	"reflect"
	"testing"
)

func testColumns() []string {
	return []string{"revenue", "marketing_spend", "discount_rate", "region", "channel", "units_sold"}
}

func testStats() BackendStatistics {
	return BackendStatistics{
		DecisionMetric: "revenue",
		TotalRows:      1200,
		ValidRows:      1180,
		AllCorrelations: []CorrelationRecord{
			{Factor: "marketing_spend", Correlation: 0.75, AbsCorrelation: 0.75, Type: FactorNumeric},
			{Factor: "units_sold", Correlation: 0.50, AbsCorrelation: 0.50, Type: FactorNumeric},
			{Factor: "discount_rate", Correlation: -0.25, AbsCorrelation: 0.25, Type: FactorNumeric},
		},
		AllSegmentImpacts: []SegmentImpactRecord{
			{Factor: "region", MeanDifference: 420.5, RelativeImpactPct: 25.3, Type: FactorCategorical},
			{Factor: "channel", MeanDifference: 80.1, RelativeImpactPct: 12.6, Type: FactorCategorical},
		},
	}
}

func rawFor(factor, why string) RawInsight {
	return RawInsight{
		Rank:         1,
		Factor:       factor,
		WhyItMatters: why,
		Evidence:     "correlation observed in dataset",
		Confidence:   "low",
	}
}

func TestValidateAndFilterInsights_SchemaGate(t *testing.T) {
	tests := []struct {
		name   string
		factor string
	}{
		{"unknown feature", "unknown_feature"},
		{"combined with space", "marketing_spend region"},
		{"combined with operator", "region+marketing_spend"},
		{"case mismatch", "Marketing_Spend"},
		{"empty factor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []RawInsight{rawFor(tt.factor, "strongly associated with revenue")}
			out := ValidateAndFilterInsights(raw, testStats(), testColumns())
			if len(out) != 0 {
				t.Errorf("expected rejection for factor %q, got %d insights", tt.factor, len(out))
			}
		})
	}
}

func TestValidateAndFilterInsights_EvidenceRequired(t *testing.T) {
	// units_sold is a real column; strip its evidence records
	stats := testStats()
	stats.AllCorrelations = stats.AllCorrelations[:1]

	raw := []RawInsight{rawFor("units_sold", "moves together with revenue")}
	out := ValidateAndFilterInsights(raw, stats, testColumns())
	if len(out) != 0 {
		t.Fatalf("expected rejection without statistical evidence, got %+v", out)
	}
}

func TestValidateAndFilterInsights_NaNEvidenceRejected(t *testing.T) {
	stats := testStats()
	stats.AllCorrelations = []CorrelationRecord{
		{Factor: "marketing_spend", Correlation: math.NaN(), AbsCorrelation: math.NaN(), Type: FactorNumeric},
	}

	raw := []RawInsight{rawFor("marketing_spend", "tracks revenue closely")}
	out := ValidateAndFilterInsights(raw, stats, testColumns())
	if len(out) != 0 {
		t.Fatalf("NaN evidence must never surface as a finding, got %+v", out)
	}
}

func TestValidateAndFilterInsights_WeakSignalSuppression(t *testing.T) {
	tests := []struct {
		name           string
		absCorrelation float64
		wantKept       bool
		wantConfidence Confidence
	}{
		{"below threshold", 0.05, false, ""},
		{"exact boundary inclusive", 0.10, true, ConfidenceMedium},
		{"medium band", 0.25, true, ConfidenceMedium},
		{"high band", 0.75, true, ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := testStats()
			stats.AllCorrelations = []CorrelationRecord{
				{Factor: "marketing_spend", Correlation: tt.absCorrelation, AbsCorrelation: tt.absCorrelation, Type: FactorNumeric},
			}

			raw := []RawInsight{rawFor("marketing_spend", "rises and falls with revenue")}
			out := ValidateAndFilterInsights(raw, stats, testColumns())

			if tt.wantKept {
				if len(out) != 1 {
					t.Fatalf("expected insight kept at abs_correlation=%.2f", tt.absCorrelation)
				}
				if out[0].Confidence != tt.wantConfidence {
					t.Errorf("confidence = %q, want %q", out[0].Confidence, tt.wantConfidence)
				}
			} else if len(out) != 0 {
				t.Fatalf("expected suppression at abs_correlation=%.2f, got %+v", tt.absCorrelation, out)
			}
		})
	}
}

func TestValidateAndFilterInsights_CategoricalWeakSignal(t *testing.T) {
	tests := []struct {
		name           string
		relativeImpact float64
		meanDifference float64
		wantKept       bool
	}{
		{"both weak", 2.0, 0.0005, false},
		{"high relative impact, tiny mean difference", 25.0, 0.0005, true},
		{"low relative impact, real mean difference", 2.0, 15.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := testStats()
			stats.AllSegmentImpacts = []SegmentImpactRecord{
				{Factor: "region", MeanDifference: tt.meanDifference, RelativeImpactPct: tt.relativeImpact, Type: FactorCategorical},
			}

			raw := []RawInsight{rawFor("region", "segments differ in average revenue")}
			out := ValidateAndFilterInsights(raw, stats, testColumns())
			if tt.wantKept != (len(out) == 1) {
				t.Fatalf("kept=%v, want %v (rel=%.2f diff=%.4f)", len(out) == 1, tt.wantKept, tt.relativeImpact, tt.meanDifference)
			}
		})
	}
}

func TestValidateAndFilterInsights_CategoricalConfidenceBands(t *testing.T) {
	tests := []struct {
		name           string
		relativeImpact float64
		wantConfidence Confidence
	}{
		{"above high threshold", 25.0, ConfidenceHigh},
		{"exactly at high threshold", 20.0, ConfidenceMedium},
		{"medium band", 12.6, ConfidenceMedium},
		{"exactly at medium threshold", 10.0, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := testStats()
			// Mean difference well above the negligible epsilon so the
			// weak-signal gate keeps the insight in every band
			stats.AllSegmentImpacts = []SegmentImpactRecord{
				{Factor: "region", MeanDifference: 300.0, RelativeImpactPct: tt.relativeImpact, Type: FactorCategorical},
			}

			raw := []RawInsight{rawFor("region", "segments differ in average revenue")}
			out := ValidateAndFilterInsights(raw, stats, testColumns())
			if len(out) != 1 {
				t.Fatalf("expected insight kept at relative_impact_pct=%.1f", tt.relativeImpact)
			}
			if out[0].Confidence != tt.wantConfidence {
				t.Errorf("confidence = %q at relative_impact_pct=%.1f, want %q", out[0].Confidence, tt.relativeImpact, tt.wantConfidence)
			}
		})
	}
}

func TestValidateAndFilterInsights_ConfidenceIgnoresLLMSelfReport(t *testing.T) {
	raw := []RawInsight{{
		Rank:         7,
		Factor:       "marketing_spend",
		WhyItMatters: "shows a strong positive association with revenue",
		Evidence:     "r=0.75 across 1180 rows",
		Confidence:   "low",
	}}

	out := ValidateAndFilterInsights(raw, testStats(), testColumns())
	if len(out) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(out))
	}
	if out[0].Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want recomputed %q", out[0].Confidence, ConfidenceHigh)
	}
	if out[0].Rank != 1 {
		t.Errorf("rank = %d, want renumbered 1", out[0].Rank)
	}
}

func TestValidateAndFilterInsights_ForbiddenLanguage(t *testing.T) {
	tests := []struct {
		name string
		why  string
	}{
		{"causes", "marketing spend causes revenue growth"},
		{"Causes capitalized", "Marketing spend Causes revenue to rise"},
		{"drives", "this factor drives the outcome"},
		{"leads to", "higher spend leads to higher revenue"},
		{"due to", "revenue is higher due to marketing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []RawInsight{rawFor("marketing_spend", tt.why)}
			out := ValidateAndFilterInsights(raw, testStats(), testColumns())
			if len(out) != 0 {
				t.Errorf("causal claim %q must be rejected", tt.why)
			}
		})
	}
}

func TestValidateAndFilterInsights_RankingByMetric(t *testing.T) {
	// Scrambled LLM order with self-assigned ranks that contradict the stats
	raw := []RawInsight{
		{Rank: 1, Factor: "discount_rate", WhyItMatters: "associated with revenue", Confidence: "high"},
		{Rank: 2, Factor: "marketing_spend", WhyItMatters: "associated with revenue", Confidence: "low"},
		{Rank: 3, Factor: "units_sold", WhyItMatters: "associated with revenue", Confidence: "medium"},
	}

	out := ValidateAndFilterInsights(raw, testStats(), testColumns())
	if len(out) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(out))
	}

	wantOrder := []string{"marketing_spend", "units_sold", "discount_rate"}
	for i, want := range wantOrder {
		if out[i].Factor != want {
			t.Errorf("position %d: factor = %q, want %q", i, out[i].Factor, want)
		}
		if out[i].Rank != i+1 {
			t.Errorf("position %d: rank = %d, want %d", i, out[i].Rank, i+1)
		}
	}
}

func TestValidateAndFilterInsights_TieBreakByInputOrder(t *testing.T) {
	stats := testStats()
	stats.AllCorrelations = []CorrelationRecord{
		{Factor: "marketing_spend", Correlation: 0.40, AbsCorrelation: 0.40, Type: FactorNumeric},
		{Factor: "units_sold", Correlation: -0.40, AbsCorrelation: 0.40, Type: FactorNumeric},
	}

	raw := []RawInsight{
		rawFor("units_sold", "tracks revenue"),
		rawFor("marketing_spend", "tracks revenue"),
	}

	out := ValidateAndFilterInsights(raw, stats, testColumns())
	if len(out) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(out))
	}
	if out[0].Factor != "units_sold" || out[1].Factor != "marketing_spend" {
		t.Errorf("ties must preserve input order, got %q then %q", out[0].Factor, out[1].Factor)
	}
}

func TestValidateAndFilterInsights_Determinism(t *testing.T) {
	raw := []RawInsight{
		rawFor("region", "segments show distinct revenue levels"),
		rawFor("marketing_spend", "correlates with revenue"),
		rawFor("unknown_feature", "made up by the model"),
		rawFor("channel", "channel mix matters for revenue"),
	}

	first := ValidateAndFilterInsights(raw, testStats(), testColumns())
	second := ValidateAndFilterInsights(raw, testStats(), testColumns())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different outputs:\n%+v\n%+v", first, second)
	}
}

func TestValidateAndFilterInsights_IdempotentRevalidation(t *testing.T) {
	raw := []RawInsight{
		rawFor("discount_rate", "inversely associated with revenue"),
		rawFor("region", "segments show distinct revenue levels"),
		rawFor("marketing_spend", "correlates with revenue"),
	}

	first := ValidateAndFilterInsights(raw, testStats(), testColumns())
	if len(first) == 0 {
		t.Fatal("test setup: expected survivors")
	}

	// Feed the validated output back in as raw insights
	again := make([]RawInsight, len(first))
	for i, v := range first {
		again[i] = RawInsight{
			Rank:         v.Rank,
			Factor:       v.Factor,
			WhyItMatters: v.WhyItMatters,
			Evidence:     v.Evidence,
			Confidence:   string(v.Confidence),
		}
	}

	second := ValidateAndFilterInsights(again, testStats(), testColumns())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-validation must be stable:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestValidateAndFilterInsights_EmptyInput(t *testing.T) {
	out := ValidateAndFilterInsights(nil, testStats(), testColumns())
	if len(out) != 0 {
		t.Fatalf("expected empty result for empty input, got %+v", out)
	}

	out = ValidateAndFilterInsights([]RawInsight{}, BackendStatistics{}, nil)
	if len(out) != 0 {
		t.Fatalf("expected empty result for empty stats and columns, got %+v", out)
	}
}

func TestValidateAndFilterInsights_DualEvidencePrefersNumeric(t *testing.T) {
	stats := testStats()
	// A factor that somehow shows up in both evidence lists
	stats.AllCorrelations = append(stats.AllCorrelations, CorrelationRecord{
		Factor: "channel", Correlation: 0.45, AbsCorrelation: 0.45, Type: FactorNumeric,
	})

	raw := []RawInsight{rawFor("channel", "channel mix matters for revenue")}
	out := ValidateAndFilterInsights(raw, stats, testColumns())
	if len(out) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(out))
	}
	// Numeric record wins: 0.45 falls in the high correlation band
	if out[0].Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q from the numeric record", out[0].Confidence, ConfidenceHigh)
	}
}

func TestValidateAndFilterInsights_MalformedEntriesDropped(t *testing.T) {
	raw := []RawInsight{
		{},
		{Factor: "marketing_spend"},
		rawFor("units_sold", "moves with revenue"),
	}

	out := ValidateAndFilterInsights(raw, testStats(), testColumns())
	// The empty entry fails the schema gate; the bare marketing_spend entry
	// still carries valid evidence so it survives with an empty justification.
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d: %+v", len(out), out)
	}
	if out[0].Factor != "marketing_spend" || out[1].Factor != "units_sold" {
		t.Errorf("unexpected survivors: %+v", out)
	}
}
