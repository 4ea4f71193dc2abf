// Package aggregation folds flat, timestamped log collections into time
// buckets, per-bucket sums, chart-ready series and summary statistics.
//
// Everything here is a pure function of its inputs: no I/O, no shared state,
// safe to call concurrently. Data-quality problems (bad timestamps, missing or
// non-numeric fields) degrade to "skip" or 0 instead of returning errors.
package aggregation

import (
	"errors"
	"fmt"
	"strings"
)

// Granularity represents the time bucket width
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ErrInvalidGranularity is returned for anything other than day, week or month
var ErrInvalidGranularity = errors.New("invalid granularity")

// ParseGranularity parses a granularity name (case-insensitive)
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: day, week, month)", ErrInvalidGranularity, s)
	}
}

// Valid reports whether g is one of the supported granularities
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

func (g Granularity) String() string {
	return string(g)
}
