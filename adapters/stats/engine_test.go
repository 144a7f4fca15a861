package stats

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"data4viz/domain/dataset"
	"data4viz/domain/insight"
	"data4viz/internal/errors"

	"github.com/stretchr/testify/require"
)

// salesTable builds a 20-row dataset with a perfectly correlated numeric
// factor, a categorical factor with a known segment split, and an
// identifier column that should be excluded.
func salesTable() *dataset.Table {
	n := 20
	revenue := make([]string, n)
	spend := make([]string, n)
	region := make([]string, n)
	orderID := make([]string, n)

	for i := 0; i < n; i++ {
		revenue[i] = fmt.Sprintf("%d", 100+10*i)
		spend[i] = fmt.Sprintf("%d", 2*(100+10*i))
		if i < n/2 {
			region[i] = "north"
		} else {
			region[i] = "south"
		}
		orderID[i] = fmt.Sprintf("ord-%04d", i)
	}

	return &dataset.Table{
		Name:    "sales.csv",
		Columns: []string{"revenue", "marketing_spend", "region", "order_id"},
		Cells: map[string][]string{
			"revenue":         revenue,
			"marketing_spend": spend,
			"region":          region,
			"order_id":        orderID,
		},
	}
}

func TestComputeDecisionStats_HappyPath(t *testing.T) {
	engine := NewEngine()
	summary, err := engine.ComputeDecisionStats(salesTable(), "revenue")
	require.NoError(t, err)

	require.Equal(t, "revenue", summary.DecisionMetric)
	require.Equal(t, 20, summary.TotalRows)
	require.Equal(t, 20, summary.ValidRows)
	require.Equal(t, 0.0, summary.MissingPercentage)

	// marketing_spend is a perfect linear function of revenue
	require.Len(t, summary.AllCorrelations, 1)
	corr := summary.AllCorrelations[0]
	require.Equal(t, "marketing_spend", corr.Factor)
	require.InDelta(t, 1.0, corr.Correlation, 1e-9)
	require.Equal(t, insight.FactorNumeric, corr.Type)

	// region splits cleanly: north mean 145, south mean 245
	require.Len(t, summary.AllSegmentImpacts, 1)
	seg := summary.AllSegmentImpacts[0]
	require.Equal(t, "region", seg.Factor)
	require.InDelta(t, 100.0, seg.MeanDifference, 1e-9)
	require.InDelta(t, 100.0/195.0*100, seg.RelativeImpactPct, 0.01)
	require.Equal(t, insight.FactorCategorical, seg.Type)
	require.InDelta(t, 245.0, seg.TopSegments["south"], 1e-9)
	require.InDelta(t, 145.0, seg.BottomSegments["north"], 1e-9)

	// order_id is identifier-like and must be excluded
	require.Len(t, summary.ExcludedColumns, 1)
	require.Equal(t, "order_id", summary.ExcludedColumns[0].Column)
	require.Equal(t, "High uniqueness", summary.ExcludedColumns[0].Reason)

	// Impact ranking: abs correlation 1.0 scores 100, region scores ~51.28
	require.Len(t, summary.TopFactors, 2)
	require.Equal(t, "marketing_spend", summary.TopFactors[0].Factor)
	require.Equal(t, "region", summary.TopFactors[1].Factor)

	require.InDelta(t, 195.0, summary.MetricStats.Mean, 1e-9)
	require.Equal(t, 0, summary.OutlierCount)
}

func TestComputeDecisionStats_Deterministic(t *testing.T) {
	engine := NewEngine()
	table := salesTable()

	first, err := engine.ComputeDecisionStats(table, "revenue")
	require.NoError(t, err)
	second, err := engine.ComputeDecisionStats(table, "revenue")
	require.NoError(t, err)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("statistics must be deterministic:\n%+v\n%+v", first, second)
	}
}

func TestComputeDecisionStats_UnknownMetric(t *testing.T) {
	engine := NewEngine()
	_, err := engine.ComputeDecisionStats(salesTable(), "profit")
	require.Error(t, err)
	require.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestComputeDecisionStats_NonNumericMetric(t *testing.T) {
	table := salesTable()
	table.Columns = append(table.Columns, "status")
	status := make([]string, 20)
	for i := range status {
		status[i] = "shipped"
	}
	table.Cells["status"] = status

	engine := NewEngine()
	_, err := engine.ComputeDecisionStats(table, "status")
	require.Error(t, err)
	require.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestComputeDecisionStats_MissingMetricValues(t *testing.T) {
	table := salesTable()
	table.Cells["revenue"][3] = ""

	engine := NewEngine()
	summary, err := engine.ComputeDecisionStats(table, "revenue")
	require.NoError(t, err)
	require.Equal(t, 20, summary.TotalRows)
	require.Equal(t, 19, summary.ValidRows)
	require.Equal(t, 5.0, summary.MissingPercentage)
}

func TestComputeDecisionStats_TooManyMissingValues(t *testing.T) {
	table := salesTable()
	for i := 0; i < 5; i++ {
		table.Cells["revenue"][i] = "n/a"
	}

	engine := NewEngine()
	_, err := engine.ComputeDecisionStats(table, "revenue")
	require.Error(t, err)
	require.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestComputeDecisionStats_OutlierDetection(t *testing.T) {
	table := salesTable()
	table.Cells["revenue"][19] = "100000"

	engine := NewEngine()
	summary, err := engine.ComputeDecisionStats(table, "revenue")
	require.NoError(t, err)
	require.Equal(t, 1, summary.OutlierCount)
	require.Equal(t, 5.0, summary.OutlierPercentage)
}

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   dataset.ColumnType
	}{
		{"integers", []string{"1", "2", "3"}, dataset.TypeNumeric},
		{"floats with missing", []string{"1.5", "", "2.5", "3.5"}, dataset.TypeNumeric},
		{"mostly numeric strings", []string{"1", "2", "3", "4", "5", "x"}, dataset.TypeNumeric},
		{"iso dates", []string{"2024-01-01", "2024-02-01", "2024-03-01"}, dataset.TypeDatetime},
		{"labels", []string{"north", "south", "north"}, dataset.TypeCategorical},
		{"all missing", []string{"", "nan", "null"}, dataset.TypeCategorical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferColumnType(tt.values); got != tt.want {
				t.Errorf("InferColumnType(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseNumeric(t *testing.T) {
	if _, ok := parseNumeric("nan"); ok {
		t.Error("nan token must parse as missing")
	}
	if v, ok := parseNumeric(" 1,234.5 "); !ok || math.Abs(v-1234.5) > 1e-9 {
		t.Errorf("thousands separator: got %v ok=%v", v, ok)
	}
}
