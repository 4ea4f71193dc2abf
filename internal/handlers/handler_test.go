package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/services"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app   *fiber.App
	store *store.MemoryStore
	queue *queue.MemoryQueue
	loc   *time.Location
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.NewMemoryStore()
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	q := queue.NewMemoryQueue()
	logger := logging.NewNop()

	svc, err := services.NewAnalyticsService(logger, st, c, q, metrics.NewTestManager(), config.DefaultConfig().Aggregation)
	require.NoError(t, err)

	h := New(logger, svc)
	app := fiber.New()
	app.Use(logging.FiberMiddleware(logger))
	v1 := app.Group("/v1")
	v1.Post("/aggregate", h.Aggregate)
	v1.Get("/users/:user_id/water/analytics", h.WaterAnalytics)
	v1.Get("/users/:user_id/workouts/analytics", h.WorkoutAnalytics)
	v1.Get("/users/:user_id/weight/analytics", h.WeightAnalytics)
	v1.Get("/users/:user_id/food/diary", h.FoodDiary)
	v1.Post("/users/:user_id/logs/:kind", h.IngestLogs)
	v1.Delete("/users/:user_id/logs/:kind", h.DeleteLogs)
	v1.Get("/users/:user_id/logs/:kind", h.ListLogs)
	v1.Get("/users/:user_id/logs/:kind/:id", h.GetLog)

	t.Cleanup(func() {
		_ = c.Close()
		_ = q.Close()
	})

	return &testServer{app: app, store: st, queue: q, loc: svc.Location()}
}

func (s *testServer) put(t *testing.T, logs ...records.Log) {
	t.Helper()
	for _, l := range logs {
		e, err := store.NewEntry(l, s.loc)
		require.NoError(t, err)
		require.NoError(t, s.store.Put(context.Background(), e))
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) models.ErrorDetail {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Error
}

func TestWaterAnalytics(t *testing.T) {
	srv := newTestServer(t)
	today := time.Now().In(srv.loc)
	yesterday := today.AddDate(0, 0, -1)
	srv.put(t,
		&records.WaterLog{ID: "1", UserID: "u1", AmountMl: 250, ConsumptionDate: yesterday.Format(time.RFC3339)},
		&records.WaterLog{ID: "2", UserID: "u1", AmountMl: 400, ConsumptionDate: today.Format(time.RFC3339)},
	)

	resp, data := srv.do(t, "GET", "/v1/users/u1/water/analytics?granularity=day&width=320", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	var body models.WaterAnalyticsResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "u1", body.UserID)
	assert.Len(t, body.Buckets, 2)
	assert.Equal(t, 650.0, body.Stats.TotalMl)
	assert.Equal(t, 400.0, body.Stats.TodayMl)
	assert.Equal(t, 8, body.Chart.MaxPoints)
	assert.Equal(t, 2, body.History.Total)
}

func TestAnalytics_InvalidQuery(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path    string
		message string
	}{
		{path: "/v1/users/u1/water/analytics?granularity=hour", message: "granularity must be one of: day, week, month"},
		{path: "/v1/users/u1/weight/analytics?page=abc"},
		{path: "/v1/users/u1/workouts/analytics?from=2025-08-01&to=2025-07-01", message: "to must not be before from"},
		{path: "/v1/users/u1/food/diary?date=20-07-2025", message: "date must be in YYYY-MM-DD format"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, data := srv.do(t, "GET", tt.path, "")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			detail := decodeError(t, data)
			assert.Equal(t, services.CodeInvalidRequest, detail.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, detail.Message)
			}
		})
	}
}

func TestWorkoutAnalytics_UnknownMetric(t *testing.T) {
	srv := newTestServer(t)

	resp, data := srv.do(t, "GET", "/v1/users/u1/workouts/analytics?metric=heartRate", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unknown workout metric", decodeError(t, data).Message)
}

func TestWeightAnalytics(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().In(srv.loc)
	srv.put(t,
		&records.WeightRecord{ID: "1", UserID: "u1", WeightKg: 80, RecordedAt: now.AddDate(0, -2, 0).Format(time.RFC3339)},
		&records.WeightRecord{ID: "2", UserID: "u1", WeightKg: 78, RecordedAt: now.Format(time.RFC3339)},
	)

	resp, data := srv.do(t, "GET", "/v1/users/u1/weight/analytics?granularity=month", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	var body models.WeightAnalyticsResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, -2.0, body.Stats.ChangeKg)
	assert.Equal(t, 78.0, body.Stats.LatestKg)
}

func TestFoodDiary(t *testing.T) {
	srv := newTestServer(t)
	srv.put(t,
		&records.FoodLog{ID: "1", UserID: "u1", FoodID: "com", FoodName: "Com tam", MealType: "lunch", Quantity: 1, Calories: 600, ConsumptionDate: "2025-07-20T12:00:00+07:00"},
	)

	resp, data := srv.do(t, "GET", "/v1/users/u1/food/diary?date=2025-07-20", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	var body models.FoodDiaryResponse
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "2025-07-20", body.Date)
	assert.Equal(t, 600.0, body.Totals.Calories)
	require.Len(t, body.Meals, 4)
	assert.Equal(t, records.MealLunch, body.Meals[1].MealType)
}

func TestAggregate(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"records": [
			{"recordedAt": "2025-01-05T10:00:00Z", "km": 5},
			{"recordedAt": "2025-01-06T10:00:00Z", "km": 3},
			{"recordedAt": null, "km": 1}
		],
		"timestampField": "recordedAt",
		"sumFields": ["km"],
		"granularity": "week",
		"timezone": "UTC"
	}`
	resp, data := srv.do(t, "POST", "/v1/aggregate", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))

	var out models.AggregateResponse
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Buckets, 2)
	assert.Equal(t, "2025-W01", out.Buckets[0].Key)
	assert.Equal(t, "2025-W02", out.Buckets[1].Key)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, "UTC", out.Timezone)
	assert.Equal(t, 8.0, out.Stats["km"].Total)

	resp, data = srv.do(t, "POST", "/v1/aggregate", `{
		"records": [{"t": "2025-01-05", "v": 1e308}, {"t": "2025-01-06", "v": 1e308}],
		"timestampField": "t", "sumFields": ["v"], "granularity": "day"
	}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "records[0].v must be between -1e12 and 1e12", decodeError(t, data).Message)

	resp, data = srv.do(t, "POST", "/v1/aggregate", `{"records": []}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "timestampField is required", decodeError(t, data).Message)

	resp, data = srv.do(t, "POST", "/v1/aggregate", `{"records": [`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_JSON", decodeError(t, data).Code)
}

func TestIngestLogs(t *testing.T) {
	srv := newTestServer(t)

	resp, data := srv.do(t, "POST", "/v1/users/u1/logs/water", `{"amountMl": 300, "consumptionDate": "2025-07-20T08:00:00"}`)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(data))

	var out models.IngestResponse
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 1, out.Accepted)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, out.RequestID, resp.Header.Get(logging.RequestIDHeader))

	resp, data = srv.do(t, "POST", "/v1/users/u1/logs/water", `[
		{"amountMl": 300, "consumptionDate": "2025-07-20"},
		{"amountMl": 200, "consumptionDate": "2025-07-21"}
	]`)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(data))
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 2, out.Accepted)
	assert.Equal(t, 3, srv.queue.Pending(queue.LogSubject("water")))
}

func TestIngestLogs_Rejected(t *testing.T) {
	srv := newTestServer(t)

	resp, data := srv.do(t, "POST", "/v1/users/u1/logs/water", `{"amountMl": 0, "consumptionDate": "2025-07-20"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	detail := decodeError(t, data)
	assert.Equal(t, services.CodeInvalidRequest, detail.Code)
	assert.Equal(t, records.FieldAmountMl, detail.Details["field"])

	resp, _ = srv.do(t, "POST", "/v1/users/u1/logs/sleep", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, data = srv.do(t, "POST", "/v1/users/u1/logs/water", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_JSON", decodeError(t, data).Code)
}

func TestLogsListGetDelete(t *testing.T) {
	srv := newTestServer(t)
	srv.put(t,
		&records.WaterLog{ID: "a", UserID: "u1", AmountMl: 100, ConsumptionDate: "2025-07-18"},
		&records.WaterLog{ID: "b", UserID: "u1", AmountMl: 200, ConsumptionDate: "2025-07-19"},
	)

	resp, data := srv.do(t, "GET", "/v1/users/u1/logs/water?page_size=1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var page models.HistoryPage[models.EntryView]
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].ID)

	resp, data = srv.do(t, "GET", "/v1/users/u1/logs/water/a", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var entry models.EntryView
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, records.KindWater, entry.Kind)

	resp, data = srv.do(t, "DELETE", "/v1/users/u1/logs/water", `{"ids": ["a"]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(data))
	var del models.DeleteResponse
	require.NoError(t, json.Unmarshal(data, &del))
	assert.Equal(t, 1, del.Deleted)

	resp, data = srv.do(t, "GET", "/v1/users/u1/logs/water/a", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, services.CodeNotFound, decodeError(t, data).Code)

	resp, _ = srv.do(t, "DELETE", "/v1/users/u1/logs/water", `{"ids": []}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDecodeRecords(t *testing.T) {
	raw, err := decodeRecords([]byte(`  {"a": 1} `))
	require.NoError(t, err)
	assert.Len(t, raw, 1)

	raw, err = decodeRecords([]byte(`[{"a": 1}, {"a": 2}]`))
	require.NoError(t, err)
	assert.Len(t, raw, 2)

	_, err = decodeRecords([]byte("   "))
	assert.ErrorIs(t, err, errEmptyBody)

	_, err = decodeRecords([]byte(`[{"a": 1}`))
	assert.Error(t, err)
}
