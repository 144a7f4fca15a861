package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"data4viz/domain/dataset"
	"data4viz/domain/insight"
	"data4viz/internal/errors"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	// minValidMetricRatio is the share of rows that must coerce to a number
	// for a column to be usable as the decision metric
	minValidMetricRatio = 0.9

	// minCorrelationPairs is the smallest sample for a Pearson correlation
	minCorrelationPairs = 10

	// highUniquenessPct excludes identifier-like columns from analysis
	highUniquenessPct = 80.0

	// freeTextAvgLength excludes long free-text columns from analysis
	freeTextAvgLength = 50.0

	topFactorLimit   = 5
	evidenceListSize = 10
)

// excludedNamePatterns flags columns whose names suggest identifiers,
// URLs, or free text
var excludedNamePatterns = []string{"id", "url", "description", "title", "summary", "name", "email", "address"}

// ErrNonNumericMetric is returned when the chosen decision metric cannot be
// coerced to numbers
var ErrNonNumericMetric = errors.ValidationError(
	"The selected metric contains non-numeric values and cannot be analyzed. " +
		"Please clean or convert this column to numeric values.")

// Engine computes decision-driven EDA statistics for a dataset and a chosen
// numeric decision metric. Statistics only: no explanations, no
// recommendations, no models.
type Engine struct{}

// NewEngine creates a statistics engine
func NewEngine() *Engine {
	return &Engine{}
}

// columnResult carries the analysis of one candidate factor column
type columnResult struct {
	correlation *insight.CorrelationRecord
	segment     *insight.SegmentImpactRecord
}

// ComputeDecisionStats computes the full BackendStatistics summary:
// correlation of the metric against every numeric factor, segment-level
// mean differences for every categorical factor, missing/outlier rates,
// and an impact-ranked factor list. Output is deterministic for a given
// table.
func (e *Engine) ComputeDecisionStats(table *dataset.Table, decisionMetric string) (*insight.BackendStatistics, error) {
	if table == nil {
		return nil, errors.InvalidInput("dataset table must not be nil")
	}
	if !table.HasColumn(decisionMetric) {
		return nil, errors.NotFound(fmt.Sprintf("column %q", decisionMetric))
	}

	totalRows := table.RowCount()
	metricValues, validMask, validRows := coerceMetric(table.Column(decisionMetric))
	if validRows == 0 || float64(validRows)/float64(max(totalRows, 1)) < minValidMetricRatio {
		return nil, ErrNonNumericMetric
	}

	missingPct := round(float64(totalRows-validRows)/float64(totalRows)*100, 2)

	excluded := detectExcludedColumns(table, decisionMetric, totalRows)
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, exc := range excluded {
		excludedSet[exc.Column] = struct{}{}
	}

	// Candidate factor columns keep the table's column order so the
	// assembled output is stable.
	candidates := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		if col == decisionMetric {
			continue
		}
		if _, skip := excludedSet[col]; skip {
			continue
		}
		candidates = append(candidates, col)
	}

	// Fan per-column analysis out, collecting into an indexed slice so
	// concurrency never affects output order.
	results := make([]columnResult, len(candidates))
	var group errgroup.Group
	for i, col := range candidates {
		i, col := i, col
		group.Go(func() error {
			results[i] = analyzeColumn(table.Column(col), col, metricValues, validMask)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errors.Wrap(err, "column analysis failed")
	}

	var correlations []insight.CorrelationRecord
	var segmentImpacts []insight.SegmentImpactRecord
	for _, res := range results {
		if res.correlation != nil {
			correlations = append(correlations, *res.correlation)
		}
		if res.segment != nil {
			segmentImpacts = append(segmentImpacts, *res.segment)
		}
	}

	validValues := make([]float64, 0, validRows)
	for i, ok := range validMask {
		if ok {
			validValues = append(validValues, metricValues[i])
		}
	}

	outlierCount := countOutliersIQR(validValues)
	metricStats := summarizeMetric(validValues)

	summary := &insight.BackendStatistics{
		DecisionMetric:    decisionMetric,
		TotalRows:         totalRows,
		ValidRows:         validRows,
		MissingPercentage: missingPct,
		OutlierCount:      outlierCount,
		OutlierPercentage: round(float64(outlierCount)/float64(validRows)*100, 2),
		TopFactors:        rankFactors(correlations, segmentImpacts),
		AllCorrelations:   topCorrelations(correlations),
		AllSegmentImpacts: topSegmentImpacts(segmentImpacts),
		ExcludedColumns:   excluded,
		MetricStats:       metricStats,
	}
	return summary, nil
}

// coerceMetric trims and parses the decision metric column. Returns the
// parsed values, a validity mask, and the valid count.
func coerceMetric(values []string) ([]float64, []bool, int) {
	parsed := make([]float64, len(values))
	mask := make([]bool, len(values))
	valid := 0
	for i, v := range values {
		if f, ok := parseNumeric(v); ok {
			parsed[i] = f
			mask[i] = true
			valid++
		}
	}
	return parsed, mask, valid
}

// detectExcludedColumns drops identifier, URL, and free-text columns from
// the factor candidate pool
func detectExcludedColumns(table *dataset.Table, decisionMetric string, totalRows int) []insight.ExcludedColumn {
	var excluded []insight.ExcludedColumn

	for _, col := range table.Columns {
		if col == decisionMetric {
			continue
		}

		values := table.Column(col)
		uniquePct := uniquePercentage(values, totalRows)
		lowered := strings.ToLower(col)

		switch {
		case uniquePct > highUniquenessPct:
			excluded = append(excluded, insight.ExcludedColumn{Column: col, Reason: "High uniqueness"})
		case matchesPattern(lowered):
			excluded = append(excluded, insight.ExcludedColumn{Column: col, Reason: patternReason(lowered, uniquePct)})
		case InferColumnType(values) == dataset.TypeCategorical && averageTextLength(values) > freeTextAvgLength:
			excluded = append(excluded, insight.ExcludedColumn{Column: col, Reason: "Free-text column"})
		}
	}
	return excluded
}

func matchesPattern(loweredName string) bool {
	for _, pattern := range excludedNamePatterns {
		if strings.Contains(loweredName, pattern) {
			return true
		}
	}
	return false
}

func patternReason(loweredName string, uniquePct float64) string {
	switch {
	case strings.Contains(loweredName, "url") || strings.Contains(loweredName, "link"):
		return "URL column"
	case strings.Contains(loweredName, "description") || strings.Contains(loweredName, "text") || strings.Contains(loweredName, "comment"):
		return "Free-text column"
	case strings.Contains(loweredName, "id") && uniquePct > 50:
		return "Identifier column"
	default:
		return "Text/identifier pattern"
	}
}

func uniquePercentage(values []string, totalRows int) float64 {
	if totalRows == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if isMissing(v) {
			continue
		}
		seen[strings.TrimSpace(v)] = struct{}{}
	}
	return float64(len(seen)) / float64(totalRows) * 100
}

// averageTextLength samples up to 100 present values
func averageTextLength(values []string) float64 {
	total := 0
	count := 0
	for _, v := range values {
		if isMissing(v) {
			continue
		}
		total += len(strings.TrimSpace(v))
		count++
		if count == 100 {
			break
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// analyzeColumn produces correlation or segment-impact evidence for one
// factor column, depending on its inferred type
func analyzeColumn(values []string, factor string, metricValues []float64, validMask []bool) columnResult {
	switch InferColumnType(values) {
	case dataset.TypeNumeric:
		return columnResult{correlation: correlate(values, factor, metricValues, validMask)}
	case dataset.TypeCategorical:
		return columnResult{segment: segmentImpact(values, factor, metricValues, validMask)}
	default:
		return columnResult{}
	}
}

// correlate computes the Pearson correlation between the metric and one
// numeric factor over rows where both are present
func correlate(values []string, factor string, metricValues []float64, validMask []bool) *insight.CorrelationRecord {
	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if i >= len(validMask) || !validMask[i] {
			continue
		}
		if f, ok := parseNumeric(v); ok {
			xs = append(xs, f)
			ys = append(ys, metricValues[i])
		}
	}
	if len(xs) < minCorrelationPairs {
		return nil
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}

	return &insight.CorrelationRecord{
		Factor:         factor,
		Correlation:    round(r, 4),
		AbsCorrelation: round(math.Abs(r), 4),
		Type:           insight.FactorNumeric,
	}
}

// segmentImpact computes the spread of the metric mean across a categorical
// factor's segments
func segmentImpact(values []string, factor string, metricValues []float64, validMask []bool) *insight.SegmentImpactRecord {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	overallSum := 0.0
	overallCount := 0

	for i, v := range values {
		if i >= len(validMask) || !validMask[i] || isMissing(v) {
			continue
		}
		segment := strings.TrimSpace(v)
		sums[segment] += metricValues[i]
		counts[segment]++
		overallSum += metricValues[i]
		overallCount++
	}
	if len(counts) < 2 || overallCount == 0 {
		return nil
	}

	type segMean struct {
		name string
		mean float64
	}
	means := make([]segMean, 0, len(counts))
	for name, count := range counts {
		means = append(means, segMean{name: name, mean: sums[name] / float64(count)})
	}
	sort.Slice(means, func(i, j int) bool {
		if means[i].mean != means[j].mean {
			return means[i].mean > means[j].mean
		}
		return means[i].name < means[j].name
	})

	meanDiff := means[0].mean - means[len(means)-1].mean
	overallMean := overallSum / float64(overallCount)

	relativeImpact := math.Abs(meanDiff)
	if overallMean != 0 {
		relativeImpact = math.Abs(meanDiff/overallMean) * 100
	}

	top := make(map[string]float64)
	for i := 0; i < len(means) && i < 3; i++ {
		top[means[i].name] = round(means[i].mean, 4)
	}
	bottom := make(map[string]float64)
	for i := len(means) - 1; i >= 0 && i >= len(means)-3; i-- {
		bottom[means[i].name] = round(means[i].mean, 4)
	}

	return &insight.SegmentImpactRecord{
		Factor:            factor,
		MeanDifference:    round(meanDiff, 4),
		RelativeImpactPct: round(relativeImpact, 2),
		TopSegments:       top,
		BottomSegments:    bottom,
		Type:              insight.FactorCategorical,
	}
}

// countOutliersIQR counts values outside the 1.5*IQR fences
func countOutliersIQR(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	q1, err1 := mstats.Percentile(values, 25)
	q3, err3 := mstats.Percentile(values, 75)
	if err1 != nil || err3 != nil {
		return 0
	}
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

func summarizeMetric(values []float64) insight.MetricStats {
	if len(values) == 0 {
		return insight.MetricStats{}
	}
	mean, _ := mstats.Mean(values)
	median, _ := mstats.Median(values)
	std, _ := mstats.StandardDeviationSample(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)

	return insight.MetricStats{
		Mean:   round(mean, 4),
		Median: round(median, 4),
		Std:    round(std, 4),
		Min:    round(min, 4),
		Max:    round(max, 4),
	}
}

// rankFactors merges correlation and segment evidence into an impact-ranked
// factor list: sorted by impact score descending with factor name as the
// tie-break, deduplicated keeping the stronger signal, truncated to the top
// five.
func rankFactors(correlations []insight.CorrelationRecord, segmentImpacts []insight.SegmentImpactRecord) []insight.FactorSummary {
	factors := make([]insight.FactorSummary, 0, len(correlations)+len(segmentImpacts))
	for _, corr := range correlations {
		factors = append(factors, insight.FactorSummary{
			Factor:         corr.Factor,
			ImpactScore:    round(corr.AbsCorrelation*100, 2),
			Type:           insight.FactorNumeric,
			Correlation:    corr.Correlation,
			AbsCorrelation: corr.AbsCorrelation,
		})
	}
	for _, seg := range segmentImpacts {
		factors = append(factors, insight.FactorSummary{
			Factor:         seg.Factor,
			ImpactScore:    round(seg.RelativeImpactPct, 2),
			Type:           insight.FactorCategorical,
			MeanDifference: seg.MeanDifference,
		})
	}

	sortFactors(factors)

	seen := make(map[string]int, len(factors))
	deduped := factors[:0]
	for _, f := range factors {
		if idx, dup := seen[f.Factor]; dup {
			if f.ImpactScore > deduped[idx].ImpactScore {
				deduped[idx] = f
			}
			continue
		}
		seen[f.Factor] = len(deduped)
		deduped = append(deduped, f)
	}

	sortFactors(deduped)
	if len(deduped) > topFactorLimit {
		deduped = deduped[:topFactorLimit]
	}
	return deduped
}

func sortFactors(factors []insight.FactorSummary) {
	sort.Slice(factors, func(i, j int) bool {
		if factors[i].ImpactScore != factors[j].ImpactScore {
			return factors[i].ImpactScore > factors[j].ImpactScore
		}
		return factors[i].Factor < factors[j].Factor
	})
}

func topCorrelations(correlations []insight.CorrelationRecord) []insight.CorrelationRecord {
	sorted := append([]insight.CorrelationRecord(nil), correlations...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AbsCorrelation != sorted[j].AbsCorrelation {
			return sorted[i].AbsCorrelation > sorted[j].AbsCorrelation
		}
		return sorted[i].Factor < sorted[j].Factor
	})
	if len(sorted) > evidenceListSize {
		sorted = sorted[:evidenceListSize]
	}
	return sorted
}

func topSegmentImpacts(segmentImpacts []insight.SegmentImpactRecord) []insight.SegmentImpactRecord {
	sorted := append([]insight.SegmentImpactRecord(nil), segmentImpacts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RelativeImpactPct != sorted[j].RelativeImpactPct {
			return sorted[i].RelativeImpactPct > sorted[j].RelativeImpactPct
		}
		return sorted[i].Factor < sorted[j].Factor
	})
	if len(sorted) > evidenceListSize {
		sorted = sorted[:evidenceListSize]
	}
	return sorted
}

// round keeps the wire format aligned with the original backend's rounding
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
