package models

import (
	"testing"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("UTC+7", 7*3600)

func TestAnalyticsRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request AnalyticsRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults",
			request: AnalyticsRequest{UserID: "u1"},
		},
		{
			name:    "full range",
			request: AnalyticsRequest{UserID: "u1", Granularity: "Week", From: "2025-07-01", To: "2025-07-31", Page: 2, PageSize: 50, Width: 360},
		},
		{
			name:    "missing user",
			request: AnalyticsRequest{},
			wantErr: true,
			errMsg:  "user_id is required",
		},
		{
			name:    "bad granularity",
			request: AnalyticsRequest{UserID: "u1", Granularity: "hour"},
			wantErr: true,
			errMsg:  "granularity must be one of: day, week, month",
		},
		{
			name:    "bad from",
			request: AnalyticsRequest{UserID: "u1", From: "yesterday"},
			wantErr: true,
			errMsg:  "from must be an ISO-8601 date/time or epoch",
		},
		{
			name:    "inverted range",
			request: AnalyticsRequest{UserID: "u1", From: "2025-07-31", To: "2025-07-01"},
			wantErr: true,
			errMsg:  "to must not be before from",
		},
		{
			name:    "page size too large",
			request: AnalyticsRequest{UserID: "u1", PageSize: 1000},
			wantErr: true,
			errMsg:  "page_size must be between 1 and 200",
		},
		{
			name:    "negative width",
			request: AnalyticsRequest{UserID: "u1", Width: -1},
			wantErr: true,
			errMsg:  "width must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate(ict)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusBadRequest, fe.Code)
			assert.Equal(t, tt.errMsg, fe.Message)
		})
	}
}

func TestAnalyticsRequest_ParsedFields(t *testing.T) {
	req := AnalyticsRequest{UserID: "u1", Granularity: "month", From: "2025-07-01", To: "2025-07-31"}
	require.NoError(t, req.Validate(ict))

	assert.Equal(t, aggregation.GranularityMonth, req.GranularityParsed)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, ict), req.FromParsed)
	// date-only "to" covers the whole local day
	assert.Equal(t, time.Date(2025, 7, 31, 23, 59, 59, int(999*time.Millisecond), ict), req.ToParsed)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
}

func TestAnalyticsRequest_ToWithTimeIsExact(t *testing.T) {
	req := AnalyticsRequest{UserID: "u1", To: "2025-07-31T10:00:00Z"}
	require.NoError(t, req.Validate(ict))
	assert.True(t, req.ToParsed.Equal(time.Date(2025, 7, 31, 10, 0, 0, 0, time.UTC)))
	assert.True(t, req.FromParsed.IsZero())
}

func TestFoodDiaryRequest_Validate(t *testing.T) {
	now := time.Date(2025, 7, 20, 18, 30, 0, 0, time.UTC) // 01:30 on the 21st in ICT

	req := FoodDiaryRequest{UserID: "u1"}
	require.NoError(t, req.Validate(ict, now))
	assert.Equal(t, "2025-07-21", req.DateKey)
	assert.Equal(t, time.Date(2025, 7, 21, 0, 0, 0, 0, ict), req.Start)
	assert.Equal(t, req.Start.AddDate(0, 0, 1).Add(-time.Millisecond), req.End)

	req = FoodDiaryRequest{UserID: "u1", Date: "2025-07-01"}
	require.NoError(t, req.Validate(ict, now))
	assert.Equal(t, "2025-07-01", req.DateKey)

	req = FoodDiaryRequest{UserID: "u1", Date: "01/07/2025"}
	assert.Error(t, req.Validate(ict, now))

	req = FoodDiaryRequest{Date: "2025-07-01"}
	assert.Error(t, req.Validate(ict, now))
}

func TestAggregateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request AggregateRequest
		wantErr string
		series  string
	}{
		{
			name:    "series defaults to first sum field",
			request: AggregateRequest{TimestampField: "consumptionDate", SumFields: []string{"amountMl"}, Granularity: "day"},
			series:  "amountMl",
		},
		{
			name:    "count series without sum fields",
			request: AggregateRequest{TimestampField: "t", Granularity: "week", SeriesField: "count"},
			series:  "count",
		},
		{
			name:    "missing timestamp field",
			request: AggregateRequest{SumFields: []string{"a"}, Granularity: "day"},
			wantErr: "timestampField is required",
		},
		{
			name:    "bad granularity",
			request: AggregateRequest{TimestampField: "t", SumFields: []string{"a"}, Granularity: "year"},
			wantErr: "granularity must be one of: day, week, month",
		},
		{
			name:    "no sum fields",
			request: AggregateRequest{TimestampField: "t", Granularity: "day"},
			wantErr: "sumFields must name at least one field",
		},
		{
			name:    "count is reserved",
			request: AggregateRequest{TimestampField: "t", SumFields: []string{"count"}, Granularity: "day"},
			wantErr: "sumFields must not be empty or 'count'",
		},
		{
			name:    "unknown series field",
			request: AggregateRequest{TimestampField: "t", SumFields: []string{"a"}, SeriesField: "b", Granularity: "day"},
			wantErr: "seriesField must be one of sumFields or 'count'",
		},
		{
			name: "large but finite values",
			request: AggregateRequest{TimestampField: "t", SumFields: []string{"a"}, Granularity: "day",
				Records: []aggregation.Record{{"t": "2025-07-20", "a": 1e12}, {"t": "2025-07-20", "a": -1e12}}},
			series: "a",
		},
		{
			name: "value too large to total",
			request: AggregateRequest{TimestampField: "t", SumFields: []string{"a"}, Granularity: "day",
				Records: []aggregation.Record{{"t": "2025-07-20", "a": 5.0}, {"t": "2025-07-21", "a": 1e308}}},
			wantErr: "records[1].a must be between -1e12 and 1e12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.series, tt.request.SeriesField)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestDeleteEntriesRequest_Validate(t *testing.T) {
	assert.NoError(t, (&DeleteEntriesRequest{IDs: []string{"a", "b"}}).Validate())
	assert.Error(t, (&DeleteEntriesRequest{}).Validate())
	assert.Error(t, (&DeleteEntriesRequest{IDs: []string{"a", " "}}).Validate())
	assert.Error(t, (&DeleteEntriesRequest{IDs: make([]string, MaxDeleteIDs+1)}).Validate())
}
