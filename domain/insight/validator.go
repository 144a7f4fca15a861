package insight

import (
	"math"
	"sort"
	"strings"
)

// Validation policy constants. Thresholds mirror the confidence bands: a
// numeric factor below the medium band has no defensible signal, and a
// categorical factor is suppressed only when both its relative impact and
// its absolute mean spread are weak.
const (
	// MinAbsCorrelation is the weakest numeric signal worth reporting
	MinAbsCorrelation = 0.10

	// HighCorrelationThreshold separates medium from high numeric confidence
	HighCorrelationThreshold = 0.30

	// MinRelativeImpactPct is the weakest categorical signal worth reporting
	MinRelativeImpactPct = 10.0

	// HighRelativeImpactPct separates medium from high categorical confidence
	HighRelativeImpactPct = 20.0

	// NegligibleMeanDifference treats a categorical mean spread as zero
	NegligibleMeanDifference = 0.001
)

// CausalLanguageDenylist rejects insights phrased as causal claims. The
// system limits itself to correlational statements; matching is
// case-insensitive substring search over why_it_matters.
var CausalLanguageDenylist = []string{
	"causes",
	"cause",
	"caused by",
	"drives",
	"drive",
	"driven by",
	"leads to",
	"results in",
	"because of",
	"due to",
}

// evidence is the statistical record matched to one insight's factor
type evidence struct {
	factorType     FactorType
	metric         float64
	meanDifference float64
}

// ValidateAndFilterInsights filters LLM-proposed insights against the
// backend statistics and the dataset's ground-truth schema, then re-ranks
// the survivors purely by statistical impact.
//
// Each raw insight passes, in order: an exact case-sensitive schema gate, an
// evidence lookup (correlation records preferred over segment impacts when a
// factor somehow has both), a finite-evidence check, weak-signal
// suppression, and the causal-language gate. Confidence is recomputed from
// the evidence metric, overwriting the LLM's self-report. Rejected insights
// are silently dropped.
//
// The function is a pure computation: identical inputs always yield an
// identical output list, in identical order. Ties in the final sort are
// broken by input order, first seen wins.
func ValidateAndFilterInsights(raw []RawInsight, stats BackendStatistics, datasetColumns []string) []ValidatedInsight {
	columns := make(map[string]struct{}, len(datasetColumns))
	for _, col := range datasetColumns {
		columns[col] = struct{}{}
	}

	type survivor struct {
		insight ValidatedInsight
		metric  float64
		order   int
	}

	survivors := make([]survivor, 0, len(raw))

	for i, candidate := range raw {
		// Schema gate: the factor must be a literal dataset column.
		// Combined names ("a+b", "a b") and hallucinated features never
		// match, so pure set membership subsumes pattern checks.
		if _, ok := columns[candidate.Factor]; !ok {
			continue
		}

		ev, found := lookupEvidence(candidate.Factor, stats)
		if !found {
			continue
		}
		if math.IsNaN(ev.metric) || math.IsInf(ev.metric, 0) {
			continue
		}
		if isWeakSignal(ev) {
			continue
		}
		if containsCausalLanguage(candidate.WhyItMatters) {
			continue
		}

		survivors = append(survivors, survivor{
			insight: ValidatedInsight{
				Factor:       candidate.Factor,
				WhyItMatters: candidate.WhyItMatters,
				Evidence:     candidate.Evidence,
				Confidence:   recomputeConfidence(ev),
			},
			metric: ev.metric,
			order:  i,
		})
	}

	// Authoritative ranking: descending by recomputed metric, stable on
	// input order for ties. The LLM's rank field is never consulted.
	sort.SliceStable(survivors, func(a, b int) bool {
		if survivors[a].metric != survivors[b].metric {
			return survivors[a].metric > survivors[b].metric
		}
		return survivors[a].order < survivors[b].order
	})

	validated := make([]ValidatedInsight, len(survivors))
	for i, s := range survivors {
		s.insight.Rank = i + 1
		validated[i] = s.insight
	}
	return validated
}

// lookupEvidence finds the statistical record backing a factor. Correlation
// records win when a factor appears in both lists.
func lookupEvidence(factor string, stats BackendStatistics) (evidence, bool) {
	for _, corr := range stats.AllCorrelations {
		if corr.Factor == factor {
			return evidence{factorType: FactorNumeric, metric: corr.AbsCorrelation}, true
		}
	}
	for _, seg := range stats.AllSegmentImpacts {
		if seg.Factor == factor {
			return evidence{
				factorType:     FactorCategorical,
				metric:         seg.RelativeImpactPct,
				meanDifference: seg.MeanDifference,
			}, true
		}
	}
	return evidence{}, false
}

// isWeakSignal applies the suppression thresholds. The numeric boundary is
// inclusive at MinAbsCorrelation. A categorical factor is suppressed only
// when relative impact and mean difference are both weak.
func isWeakSignal(ev evidence) bool {
	switch ev.factorType {
	case FactorNumeric:
		return ev.metric < MinAbsCorrelation
	case FactorCategorical:
		return ev.metric < MinRelativeImpactPct && math.Abs(ev.meanDifference) < NegligibleMeanDifference
	default:
		return true
	}
}

// containsCausalLanguage reports whether the justification makes a causal
// claim. Any denylist hit rejects the whole insight.
func containsCausalLanguage(whyItMatters string) bool {
	lowered := strings.ToLower(whyItMatters)
	for _, term := range CausalLanguageDenylist {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// recomputeConfidence derives confidence from the evidence metric alone
func recomputeConfidence(ev evidence) Confidence {
	switch ev.factorType {
	case FactorNumeric:
		switch {
		case ev.metric >= HighCorrelationThreshold:
			return ConfidenceHigh
		case ev.metric >= MinAbsCorrelation:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	default:
		switch {
		case ev.metric > HighRelativeImpactPct:
			return ConfidenceHigh
		case ev.metric > MinRelativeImpactPct:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	}
}
