package aggregation

import "time"

// FieldStats represents statistics for a single field
type FieldStats struct {
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// accumulator collects count/sum/min/max for one field
type accumulator struct {
	count int
	sum   float64
	min   float64
	max   float64
}

// AddValue adds a single value to the aggregation
func (a *accumulator) AddValue(value float64) {
	if a.count == 0 {
		a.min = value
		a.max = value
	} else {
		if value < a.min {
			a.min = value
		}
		if value > a.max {
			a.max = value
		}
	}
	a.count++
	a.sum += value
}

// Stats returns the accumulated statistics; an empty accumulator is all zeros
func (a *accumulator) Stats() FieldStats {
	return FieldStats{
		Total:   a.sum,
		Average: a.sum / float64(max(a.count, 1)),
		Count:   a.count,
		Min:     a.min,
		Max:     a.max,
	}
}

// Summarize computes total, average, count, min and max of every field over
// all records. Missing or non-numeric values count as 0. Every requested
// field is present in the result, zeroed for empty input.
func Summarize[R any](records []R, ex Extractor[R], fields []string) map[string]FieldStats {
	accs := make([]accumulator, len(fields))
	for _, r := range records {
		for i, f := range fields {
			var v interface{}
			if ex.Value != nil {
				v = ex.Value(r, f)
			}
			accs[i].AddValue(Number(v))
		}
	}

	out := make(map[string]FieldStats, len(fields))
	for i, f := range fields {
		out[f] = accs[i].Stats()
	}
	return out
}

// SummarizeBuckets computes statistics over per-bucket totals of each field,
// e.g. the best and worst day. Count is the number of buckets.
func SummarizeBuckets[R any](bs Buckets[R], fields []string) map[string]FieldStats {
	accs := make([]accumulator, len(fields))
	for _, b := range bs {
		for i, f := range fields {
			accs[i].AddValue(b.Sum(f))
		}
	}

	out := make(map[string]FieldStats, len(fields))
	for i, f := range fields {
		out[f] = accs[i].Stats()
	}
	return out
}

// ActiveDays counts the distinct local calendar days that have at least one
// record with a readable timestamp
func ActiveDays[R any](records []R, ex Extractor[R], loc *time.Location) int {
	return len(activeDaySet(records, ex, loc))
}

func activeDaySet[R any](records []R, ex Extractor[R], loc *time.Location) map[string]struct{} {
	days := make(map[string]struct{})
	if ex.Timestamp == nil {
		return days
	}
	for _, r := range records {
		ts, ok := ex.Timestamp(r)
		if !ok {
			continue
		}
		if key, ok := BucketKey(ts, GranularityDay, loc); ok {
			days[key] = struct{}{}
		}
	}
	return days
}

// DailyAverage divides a total by a day count, returning 0 for no days
func DailyAverage(total float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return total / float64(days)
}

// PeriodDailyAverages returns, per bucket key, the bucket total of field
// divided by the number of distinct active days inside that bucket. For week
// and month buckets this is the "average per logged day" shown under charts.
func PeriodDailyAverages[R any](bs Buckets[R], ex Extractor[R], loc *time.Location, field string) map[string]float64 {
	out := make(map[string]float64, len(bs))
	for key, b := range bs {
		days := len(activeDaySet(b.Records, ex, loc))
		out[key] = DailyAverage(b.Sum(field), days)
	}
	return out
}
