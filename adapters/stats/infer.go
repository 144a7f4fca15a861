package stats

import (
	"strconv"
	"strings"
	"time"

	"data4viz/domain/dataset"
)

// missingTokens are cell values treated as absent before numeric coercion
var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"na":   {},
	"n/a":  {},
}

var datetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// isMissing reports whether a raw cell should be treated as absent
func isMissing(value string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// parseNumeric coerces a raw cell to a float. Missing tokens and
// unparseable strings both come back as not-ok.
func parseNumeric(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if isMissing(trimmed) {
		return 0, false
	}
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseDatetime(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if isMissing(trimmed) {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InferColumnType classifies a column as numeric, datetime, or categorical.
// A column is numeric when more than 80% of its present values coerce to a
// number, datetime when more than 70% parse to dates with sane years, and
// categorical otherwise.
func InferColumnType(values []string) dataset.ColumnType {
	present := 0
	numeric := 0
	datetimes := 0
	saneYears := true

	for _, v := range values {
		if isMissing(v) {
			continue
		}
		present++
		if _, ok := parseNumeric(v); ok {
			numeric++
			continue
		}
		if t, ok := parseDatetime(v); ok {
			datetimes++
			if year := t.Year(); year < 1900 || year > 2100 {
				saneYears = false
			}
		}
	}

	if present == 0 {
		return dataset.TypeCategorical
	}
	if float64(numeric)/float64(present) > 0.8 {
		return dataset.TypeNumeric
	}
	if saneYears && float64(datetimes)/float64(present) > 0.7 {
		return dataset.TypeDatetime
	}
	return dataset.TypeCategorical
}
