package models

import (
	"encoding/json"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/records"
)

// HealthResponse reports liveness and the zone buckets are cut in
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Timezone  string `json:"timezone,omitempty"`
	Version   string `json:"version"`
}

// BucketView is one time bucket in a response
type BucketView struct {
	Key   string             `json:"key"`
	Label string             `json:"label"`
	Count int                `json:"count"`
	Sums  map[string]float64 `json:"sums"`
}

// NewBucketViews lists buckets in chronological order
func NewBucketViews[R any](bs aggregation.Buckets[R]) []BucketView {
	views := make([]BucketView, 0, len(bs))
	for _, b := range bs.Sorted() {
		sums := make(map[string]float64, len(b.Sums))
		for k, v := range b.Sums {
			sums[k] = v
		}
		views = append(views, BucketView{
			Key:   b.Key,
			Label: b.Label,
			Count: b.Count,
			Sums:  sums,
		})
	}
	return views
}

// HistoryPage is one page of a history list, newest first
type HistoryPage[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	Total    int  `json:"total"`
	HasMore  bool `json:"has_more"`
}

// ChartView carries the limited series and its chart payload
type ChartView struct {
	Series    aggregation.Series    `json:"series"`
	Data      aggregation.ChartData `json:"data"`
	MaxPoints int                   `json:"max_points"`
}

// NewChartView limits s to maxPoints and builds the chart payload
func NewChartView(s aggregation.Series, maxPoints int) ChartView {
	limited := aggregation.Limit(s, maxPoints)
	return ChartView{
		Series:    limited,
		Data:      limited.ChartData(),
		MaxPoints: maxPoints,
	}
}

// WaterStats summarizes water intake over the chart range
type WaterStats struct {
	TotalMl        float64            `json:"total_ml"`
	DailyAverageMl float64            `json:"daily_average_ml"`
	ActiveDays     int                `json:"active_days"`
	TodayMl        float64            `json:"today_ml"`
	PeriodAverages map[string]float64 `json:"period_daily_averages,omitempty"`
}

// WaterAnalyticsResponse is the water-intake analytics screen
type WaterAnalyticsResponse struct {
	UserID      string                        `json:"user_id"`
	Granularity aggregation.Granularity       `json:"granularity"`
	Buckets     []BucketView                  `json:"buckets"`
	Chart       ChartView                     `json:"chart"`
	Stats       WaterStats                    `json:"stats"`
	History     HistoryPage[records.WaterLog] `json:"history"`
	Skipped     int                           `json:"skipped"`
}

// WorkoutDay is the workout history of one local day
type WorkoutDay struct {
	Date       string                    `json:"date"`
	Label      string                    `json:"label"`
	Activities []records.WorkoutActivity `json:"activities"`
	Totals     map[string]float64        `json:"totals"`
}

// WorkoutAnalyticsResponse is the workout activity screen
type WorkoutAnalyticsResponse struct {
	UserID      string                            `json:"user_id"`
	Granularity aggregation.Granularity           `json:"granularity"`
	Metric      string                            `json:"metric"`
	Buckets     []BucketView                      `json:"buckets"`
	Chart       ChartView                         `json:"chart"`
	Stats       map[string]aggregation.FieldStats `json:"stats"`
	PeriodStats map[string]aggregation.FieldStats `json:"period_stats"`
	ActiveDays  int                               `json:"active_days"`
	History     HistoryPage[WorkoutDay]           `json:"history"`
	Skipped     int                               `json:"skipped"`
}

// WeightStats summarizes weight measurements over the chart range
type WeightStats struct {
	LatestKg float64 `json:"latest_kg"`
	MinKg    float64 `json:"min_kg"`
	MaxKg    float64 `json:"max_kg"`
	ChangeKg float64 `json:"change_kg"`
	Count    int     `json:"count"`
}

// WeightAnalyticsResponse is the weight history screen
type WeightAnalyticsResponse struct {
	UserID      string                            `json:"user_id"`
	Granularity aggregation.Granularity           `json:"granularity"`
	Buckets     []BucketView                      `json:"buckets"`
	Chart       ChartView                         `json:"chart"`
	Stats       WeightStats                       `json:"stats"`
	History     HistoryPage[records.WeightRecord] `json:"history"`
	Skipped     int                               `json:"skipped"`
}

// FoodDiaryResponse is the food log of one day
type FoodDiaryResponse struct {
	UserID string `json:"user_id"`
	records.FoodDay
}

// AggregateResponse is the result of an ad hoc aggregation
type AggregateResponse struct {
	Granularity aggregation.Granularity           `json:"granularity"`
	Timezone    string                            `json:"timezone"`
	Buckets     []BucketView                      `json:"buckets"`
	Chart       ChartView                         `json:"chart"`
	Stats       map[string]aggregation.FieldStats `json:"stats"`
	Records     int                               `json:"records"`
	Skipped     int                               `json:"skipped"`
}

// IngestResponse acknowledges accepted records
type IngestResponse struct {
	Accepted  int      `json:"accepted"`
	IDs       []string `json:"ids"`
	RequestID string   `json:"request_id,omitempty"`
}

// DeleteResponse reports a delete
type DeleteResponse struct {
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
}

// EntryView is one stored record
type EntryView struct {
	Kind   records.Kind    `json:"kind"`
	ID     string          `json:"id"`
	Time   string          `json:"time"`
	Record json.RawMessage `json:"record"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
