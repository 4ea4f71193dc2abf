package aggregation

import (
	"sort"
	"strings"

	"github.com/fitlogapp/fitlog/internal/utils"
)

// CountField selects the per-bucket record count instead of a summed field
const CountField = "count"

// Series is an ordered label/value sequence ready for charting.
// Keys holds the underlying bucket keys in the same order.
type Series struct {
	Keys   []string  `json:"keys"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ChartDataset is one dataset of the chart component payload
type ChartDataset struct {
	Data []float64 `json:"data"`
}

// ChartData is the payload shape the mobile chart component expects
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Values)
}

// Empty reports whether the series has no points
func (s Series) Empty() bool {
	return len(s.Values) == 0
}

// ChartData converts the series into the chart component payload
func (s Series) ChartData() ChartData {
	return ChartData{
		Labels:   append([]string{}, s.Labels...),
		Datasets: []ChartDataset{{Data: append([]float64{}, s.Values...)}},
	}
}

func emptySeries(capacity int) Series {
	return Series{
		Keys:   make([]string, 0, capacity),
		Labels: make([]string, 0, capacity),
		Values: make([]float64, 0, capacity),
	}
}

// ToSeries builds a chronologically ascending series of field over buckets
func ToSeries[R any](bs Buckets[R], field string) Series {
	return SeriesOf(bs, func(b *Bucket[R]) float64 {
		return b.Sum(field)
	})
}

// SeriesOf builds a chronologically ascending series with a custom per-bucket value
func SeriesOf[R any](bs Buckets[R], value func(*Bucket[R]) float64) Series {
	s := emptySeries(len(bs))
	for _, b := range bs.Sorted() {
		s.Keys = append(s.Keys, b.Key)
		s.Labels = append(s.Labels, b.Label)
		s.Values = append(s.Values, value(b))
	}
	return s
}

// Limit keeps only the most recent maxPoints entries, preserving order.
// A non-positive maxPoints keeps everything.
func Limit(s Series, maxPoints int) Series {
	start := 0
	if maxPoints > 0 && s.Len() > maxPoints {
		start = s.Len() - maxPoints
	}

	out := emptySeries(s.Len() - start)
	if start < len(s.Keys) {
		out.Keys = append(out.Keys, s.Keys[start:]...)
	}
	if start < len(s.Labels) {
		out.Labels = append(out.Labels, s.Labels[start:]...)
	}
	out.Values = append(out.Values, s.Values[start:]...)
	return out
}

// MaxPointsForWidth returns the chart point cap for a screen width.
// Screens narrower than narrowBelow get fewer points; unknown width (<= 0)
// counts as a regular screen.
func MaxPointsForWidth(width, narrowBelow int) int {
	if width > 0 && width < narrowBelow {
		return utils.MaxPointsNarrow
	}
	return utils.MaxPointsWide
}

// CompareKeys orders bucket keys chronologically.
// Week keys are compared as (year, week) integers so unpadded weeks and year
// boundaries sort correctly; other key formats sort lexicographically.
func CompareKeys(a, b string) int {
	ay, aw, aok := ParseWeekKey(a)
	by, bw, bok := ParseWeekKey(b)
	if aok && bok {
		switch {
		case ay != by:
			return cmpInt(ay, by)
		default:
			return cmpInt(aw, bw)
		}
	}
	return strings.Compare(a, b)
}

// SortKeys sorts bucket keys in place with CompareKeys
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return CompareKeys(keys[i], keys[j]) < 0
	})
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
