package aggregation

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/utils"
)

// Record is a decoded JSON log record as returned by the log API
type Record map[string]interface{}

// KeyFunc derives a bucket key from a record; false means "no bucket"
type KeyFunc[R any] func(R) (string, bool)

// ValueFunc reads a raw field value from a record
type ValueFunc[R any] func(R, string) interface{}

// Extractor gives the aggregator read access to caller-owned records.
// Record shapes differ per screen (consumptionDate, recordedAt, startTime),
// so the caller decides where the timestamp and measurements live.
type Extractor[R any] struct {
	Timestamp func(R) (interface{}, bool)
	Value     ValueFunc[R]
}

// MapExtractor reads the timestamp from timestampField and measurements by name
func MapExtractor(timestampField string) Extractor[Record] {
	return Extractor[Record]{
		Timestamp: func(r Record) (interface{}, bool) {
			v, ok := r[timestampField]
			return v, ok
		},
		Value: func(r Record, field string) interface{} {
			return r[field]
		},
	}
}

// Number coerces a raw measurement to float64.
// Missing, nil, non-numeric, NaN and infinite values count as 0.
func Number(v interface{}) float64 {
	return utils.MustToFloat64(v)
}

// Bucket accumulates the records sharing one bucket key
type Bucket[R any] struct {
	Key     string
	Label   string
	Records []R
	Sums    map[string]float64
	Count   int
}

// Sum returns the accumulated sum of field, or the record count for CountField
func (b *Bucket[R]) Sum(field string) float64 {
	if field == CountField {
		return float64(b.Count)
	}
	return b.Sums[field]
}

// Average returns the per-record average of field inside the bucket
func (b *Bucket[R]) Average(field string) float64 {
	return b.Sum(field) / float64(max(b.Count, 1))
}

// Buckets maps bucket key to bucket
type Buckets[R any] map[string]*Bucket[R]

// Keys returns the bucket keys in chronological order
func (bs Buckets[R]) Keys() []string {
	keys := make([]string, 0, len(bs))
	for k := range bs {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// Sorted returns the buckets in chronological order
func (bs Buckets[R]) Sorted() []*Bucket[R] {
	sorted := make([]*Bucket[R], 0, len(bs))
	for _, k := range bs.Keys() {
		sorted = append(sorted, bs[k])
	}
	return sorted
}

// RecordCount returns the number of records assigned to any bucket
func (bs Buckets[R]) RecordCount() int {
	n := 0
	for _, b := range bs {
		n += b.Count
	}
	return n
}

// Records returns every bucketed record, bucket by bucket in chronological
// order. Records that Group skipped are not included.
func (bs Buckets[R]) Records() []R {
	out := make([]R, 0, bs.RecordCount())
	for _, b := range bs.Sorted() {
		out = append(out, b.Records...)
	}
	return out
}

// Group folds records into time buckets of granularity g in location loc,
// summing every field in sumFields. Records whose timestamp cannot be read
// are skipped. Input records are never modified.
func Group[R any](records []R, ex Extractor[R], g Granularity, loc *time.Location, sumFields []string) Buckets[R] {
	key := func(r R) (string, bool) {
		if ex.Timestamp == nil {
			return "", false
		}
		ts, ok := ex.Timestamp(r)
		if !ok {
			return "", false
		}
		return BucketKey(ts, g, loc)
	}
	label := func(k string) string {
		return BucketLabel(k, g)
	}
	return GroupByKey(records, key, label, ex.Value, sumFields)
}

// GroupByKey is the fold behind Group with the key derivation supplied by the
// caller, e.g. grouping food entries by food id and name. label may be nil, in
// which case the key doubles as the label.
func GroupByKey[R any](records []R, key KeyFunc[R], label func(string) string, value ValueFunc[R], sumFields []string) Buckets[R] {
	buckets := make(Buckets[R])

	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}

		b, exists := buckets[k]
		if !exists {
			b = &Bucket[R]{
				Key:   k,
				Label: k,
				Sums:  make(map[string]float64, len(sumFields)),
			}
			if label != nil {
				b.Label = label(k)
			}
			for _, f := range sumFields {
				b.Sums[f] = 0
			}
			buckets[k] = b
		}

		if value != nil {
			for _, f := range sumFields {
				b.Sums[f] += Number(value(r, f))
			}
		}
		b.Count++
		b.Records = append(b.Records, r)
	}

	return buckets
}
