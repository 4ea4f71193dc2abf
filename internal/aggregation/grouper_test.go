package aggregation

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*60*60)

func waterRecords() []Record {
	return []Record{
		{"consumptionDate": "2025-07-20", "amountMl": 300},
		{"consumptionDate": "2025-07-20", "amountMl": 250},
		{"consumptionDate": "2025-07-21", "amountMl": 500},
	}
}

func TestGroup_DailyWater(t *testing.T) {
	buckets := Group(waterRecords(), MapExtractor("consumptionDate"), GranularityDay, ict, []string{"amountMl"})

	require.Len(t, buckets, 2)
	assert.Equal(t, 550.0, buckets["2025-07-20"].Sums["amountMl"])
	assert.Equal(t, 2, buckets["2025-07-20"].Count)
	assert.Equal(t, "20/07", buckets["2025-07-20"].Label)
	assert.Equal(t, 500.0, buckets["2025-07-21"].Sums["amountMl"])
	assert.Equal(t, 1, buckets["2025-07-21"].Count)
	assert.Len(t, buckets["2025-07-20"].Records, 2)

	series := ToSeries(buckets, "amountMl")
	assert.Equal(t, []string{"20/07", "21/07"}, series.Labels)
	assert.Equal(t, []float64{550, 500}, series.Values)
	assert.Equal(t, []string{"2025-07-20", "2025-07-21"}, series.Keys)
}

func TestGroup_SkipsMalformedTimestamp(t *testing.T) {
	records := []Record{
		{"consumptionDate": "not-a-date", "amountMl": 999},
		{"consumptionDate": "2025-07-20", "amountMl": 100},
	}

	buckets := Group(records, MapExtractor("consumptionDate"), GranularityDay, ict, []string{"amountMl"})
	series := ToSeries(buckets, "amountMl")

	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"20/07"}, series.Labels)
	assert.Equal(t, []float64{100}, series.Values)
	assert.NotContains(t, series.Values, 999.0)
	assert.Equal(t, 1, buckets.RecordCount())

	kept := buckets.Records()
	require.Len(t, kept, 1)
	assert.Equal(t, 100, kept[0]["amountMl"])
}

func TestGroup_MissingTimestampField(t *testing.T) {
	records := []Record{
		{"amountMl": 100},
		{"recordedAt": "2025-07-20T08:00:00Z", "amountMl": 200},
	}

	buckets := Group(records, MapExtractor("recordedAt"), GranularityDay, ict, []string{"amountMl"})
	require.Len(t, buckets, 1)
	assert.Equal(t, 200.0, buckets["2025-07-20"].Sums["amountMl"])
}

func TestGroup_NonNumericFieldsCountAsZero(t *testing.T) {
	records := []Record{
		{"startTime": "2025-07-20T08:00:00Z", "caloriesBurned": "abc", "steps": nil},
		{"startTime": "2025-07-20T09:00:00Z", "caloriesBurned": math.NaN(), "steps": 1200},
		{"startTime": "2025-07-20T10:00:00Z", "caloriesBurned": "150.5"},
	}

	fields := []string{"caloriesBurned", "durationMinutes", "steps"}
	buckets := Group(records, MapExtractor("startTime"), GranularityDay, ict, fields)

	b := buckets["2025-07-20"]
	require.NotNil(t, b)
	assert.Equal(t, 150.5, b.Sums["caloriesBurned"])
	assert.Equal(t, 0.0, b.Sums["durationMinutes"])
	assert.Equal(t, 1200.0, b.Sums["steps"])
	for f, v := range b.Sums {
		assert.False(t, math.IsNaN(v), "field %s is NaN", f)
	}
}

func TestGroup_EmptyInput(t *testing.T) {
	buckets := Group([]Record{}, MapExtractor("consumptionDate"), GranularityWeek, ict, []string{"amountMl"})
	assert.NotNil(t, buckets)
	assert.Empty(t, buckets)

	series := ToSeries(buckets, "amountMl")
	assert.NotNil(t, series.Labels)
	assert.NotNil(t, series.Values)
	assert.True(t, series.Empty())
}

func TestGroup_NilExtractorFunctions(t *testing.T) {
	buckets := Group(waterRecords(), Extractor[Record]{}, GranularityDay, ict, []string{"amountMl"})
	assert.Empty(t, buckets)

	ex := MapExtractor("consumptionDate")
	ex.Value = nil
	buckets = Group(waterRecords(), ex, GranularityDay, ict, []string{"amountMl"})
	require.Len(t, buckets, 2)
	assert.Equal(t, 0.0, buckets["2025-07-20"].Sums["amountMl"])
	assert.Equal(t, 2, buckets["2025-07-20"].Count)
}

func TestGroup_DoesNotMutateInput(t *testing.T) {
	records := waterRecords()
	before := fmt.Sprintf("%v", records)

	_ = Group(records, MapExtractor("consumptionDate"), GranularityMonth, ict, []string{"amountMl"})

	assert.Equal(t, before, fmt.Sprintf("%v", records))
}

func TestGroup_Deterministic(t *testing.T) {
	records := generateRecords(200)
	fields := []string{"amountMl"}

	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth} {
		first := Group(records, MapExtractor("consumptionDate"), g, ict, fields)
		second := Group(records, MapExtractor("consumptionDate"), g, ict, fields)

		assert.Equal(t, first, second, "granularity %s", g)
		assert.Equal(t, ToSeries(first, "amountMl"), ToSeries(second, "amountMl"), "granularity %s", g)
	}
}

func TestGroup_ConservesTotals(t *testing.T) {
	records := generateRecords(500)
	records = append(records, Record{"consumptionDate": "garbage", "amountMl": 12345})

	var expected float64
	for _, r := range records {
		if _, ok := ParseTimestamp(r["consumptionDate"], ict); ok {
			expected += Number(r["amountMl"])
		}
	}

	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth} {
		buckets := Group(records, MapExtractor("consumptionDate"), g, ict, []string{"amountMl"})

		var total float64
		for _, b := range buckets {
			total += b.Sums["amountMl"]
		}
		assert.InDelta(t, expected, total, 1e-6, "granularity %s", g)
		assert.Equal(t, len(records)-1, buckets.RecordCount(), "granularity %s", g)
	}
}

func TestGroup_DayIsFinestGranularity(t *testing.T) {
	records := generateRecords(300)
	ex := MapExtractor("consumptionDate")

	days := Group(records, ex, GranularityDay, ict, nil)
	weeks := Group(records, ex, GranularityWeek, ict, nil)
	months := Group(records, ex, GranularityMonth, ict, nil)

	assert.GreaterOrEqual(t, len(days), len(weeks))
	assert.GreaterOrEqual(t, len(days), len(months))
}

func TestGroupByKey_CompositeFoodKey(t *testing.T) {
	logs := []Record{
		{"id": "a", "foodId": "f1", "name": "Rice", "calories": 200, "quantity": 1},
		{"id": "b", "foodId": "f1", "name": "Rice", "calories": 200, "quantity": 1},
		{"id": "c", "foodId": "f2", "name": "Egg", "calories": 70, "quantity": 2},
		{"id": "d", "foodId": "f1", "name": "Rice (brown)", "calories": 180, "quantity": 1},
	}

	key := func(r Record) (string, bool) {
		return fmt.Sprintf("%v|%v", r["foodId"], r["name"]), true
	}
	value := func(r Record, f string) interface{} { return r[f] }

	buckets := GroupByKey(logs, key, nil, value, []string{"calories", "quantity"})

	require.Len(t, buckets, 3)
	rice := buckets["f1|Rice"]
	assert.Equal(t, 400.0, rice.Sums["calories"])
	assert.Equal(t, 2.0, rice.Sums["quantity"])
	assert.Equal(t, "f1|Rice", rice.Label)
	assert.Equal(t, []Record{logs[0], logs[1]}, rice.Records)
}

func TestBucket_SumAndAverage(t *testing.T) {
	b := &Bucket[Record]{Count: 4, Sums: map[string]float64{"weightKg": 280}}
	assert.Equal(t, 4.0, b.Sum(CountField))
	assert.Equal(t, 70.0, b.Average("weightKg"))

	empty := &Bucket[Record]{Sums: map[string]float64{}}
	assert.Equal(t, 0.0, empty.Average("weightKg"))
}

// generateRecords spreads n water logs over roughly 14 months with varied timestamp formats
func generateRecords(n int) []Record {
	start := time.Date(2024, 5, 3, 22, 15, 0, 0, time.UTC)
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * 21 * time.Hour)
		var raw interface{}
		switch i % 3 {
		case 0:
			raw = ts.Format(time.RFC3339)
		case 1:
			raw = ts.UnixMilli()
		default:
			raw = ts.In(ict).Format("2006-01-02")
		}
		records = append(records, Record{"consumptionDate": raw, "amountMl": 100 + i%7*50})
	}
	return records
}
