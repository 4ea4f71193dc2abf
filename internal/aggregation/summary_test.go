package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	records := []Record{
		{"startTime": "2025-07-20T08:00:00Z", "caloriesBurned": 300, "steps": 4000},
		{"startTime": "2025-07-21T08:00:00Z", "caloriesBurned": 150, "steps": "oops"},
		{"startTime": "2025-07-22T08:00:00Z", "caloriesBurned": 450},
	}

	stats := Summarize(records, MapExtractor("startTime"), []string{"caloriesBurned", "steps"})

	require.Contains(t, stats, "caloriesBurned")
	assert.Equal(t, FieldStats{Total: 900, Average: 300, Count: 3, Min: 150, Max: 450}, stats["caloriesBurned"])

	// missing and non-numeric steps count as 0
	assert.Equal(t, 4000.0, stats["steps"].Total)
	assert.Equal(t, 0.0, stats["steps"].Min)
	assert.Equal(t, 4000.0, stats["steps"].Max)
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize([]Record{}, MapExtractor("startTime"), []string{"caloriesBurned", "steps"})

	require.Len(t, stats, 2)
	for field, s := range stats {
		assert.Equal(t, FieldStats{}, s, "field %s", field)
	}
}

func TestSummarize_NegativeValues(t *testing.T) {
	records := []Record{
		{"delta": -2.5},
		{"delta": -1.0},
	}
	stats := Summarize(records, MapExtractor("recordedAt"), []string{"delta"})
	assert.Equal(t, -2.5, stats["delta"].Min)
	assert.Equal(t, -1.0, stats["delta"].Max)
	assert.Equal(t, -1.75, stats["delta"].Average)
}

func TestSummarizeBuckets(t *testing.T) {
	buckets := Group(waterRecords(), MapExtractor("consumptionDate"), GranularityDay, ict, []string{"amountMl"})
	stats := SummarizeBuckets(buckets, []string{"amountMl", CountField})

	assert.Equal(t, FieldStats{Total: 1050, Average: 525, Count: 2, Min: 500, Max: 550}, stats["amountMl"])
	assert.Equal(t, 3.0, stats[CountField].Total)

	empty := SummarizeBuckets(Buckets[Record]{}, []string{"amountMl"})
	assert.Equal(t, FieldStats{}, empty["amountMl"])
}

func TestActiveDaysAndDailyAverage(t *testing.T) {
	records := append(waterRecords(), Record{"consumptionDate": "bad", "amountMl": 10})
	ex := MapExtractor("consumptionDate")

	days := ActiveDays(records, ex, ict)
	assert.Equal(t, 2, days)
	assert.Equal(t, 525.0, DailyAverage(1050, days))
	assert.Equal(t, 0.0, DailyAverage(1050, 0))
	assert.Equal(t, 0, ActiveDays([]Record{}, ex, ict))
}

func TestPeriodDailyAverages(t *testing.T) {
	records := []Record{
		{"consumptionDate": "2025-07-14", "amountMl": 400},
		{"consumptionDate": "2025-07-14", "amountMl": 200},
		{"consumptionDate": "2025-07-16", "amountMl": 400},
		{"consumptionDate": "2025-07-21", "amountMl": 700},
	}
	ex := MapExtractor("consumptionDate")
	buckets := Group(records, ex, GranularityWeek, ict, []string{"amountMl"})

	avgs := PeriodDailyAverages(buckets, ex, ict, "amountMl")

	assert.Equal(t, 500.0, avgs["2025-W29"])
	assert.Equal(t, 700.0, avgs["2025-W30"])
}
