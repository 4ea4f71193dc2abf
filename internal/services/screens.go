package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/utils"
)

const (
	screenWater    = "water"
	screenWorkouts = "workouts"
	screenWeight   = "weight"
	screenFood     = "food"
	screenAdHoc    = "aggregate"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// Water builds the water-intake analytics screen
func (s *AnalyticsService) Water(ctx context.Context, req *models.AnalyticsRequest) (*models.WaterAnalyticsResponse, error) {
	return cached(ctx, s, s.analyticsCacheKey(screenWater, req), func() (*models.WaterAnalyticsResponse, error) {
		start := time.Now()

		data, err := fetchScreen[records.WaterLog](ctx, s, records.KindWater, req)
		if err != nil {
			return nil, err
		}

		g := s.granularity(req.GranularityParsed)
		ex := records.WaterExtractor
		fields := []string{records.FieldAmountMl}

		bs := aggregation.Group(data.chart, ex, g, s.loc, fields)
		daily := bs
		if g != aggregation.GranularityDay {
			daily = aggregation.Group(data.chart, ex, aggregation.GranularityDay, s.loc, fields)
		}

		total := 0.0
		for _, b := range daily {
			total += b.Sum(records.FieldAmountMl)
		}

		stats := models.WaterStats{
			TotalMl:        total,
			ActiveDays:     len(daily),
			DailyAverageMl: aggregation.DailyAverage(total, len(daily)),
		}
		if today, ok := aggregation.KeyForTime(s.now().In(s.loc), aggregation.GranularityDay); ok {
			if b, exists := daily[today]; exists {
				stats.TodayMl = b.Sum(records.FieldAmountMl)
			}
		}
		if g != aggregation.GranularityDay {
			stats.PeriodAverages = aggregation.PeriodDailyAverages(bs, ex, s.loc, records.FieldAmountMl)
		}

		skipped := data.skipped + len(data.chart) - bs.RecordCount()
		s.observe(screenWater, start, len(data.chart), skipped, records.KindWater)

		s.logger.Info("Water analytics completed",
			"user_id", req.UserID,
			"granularity", g,
			"records", len(data.chart),
			"buckets", len(bs),
			"latency_ms", time.Since(start).Milliseconds(),
		)

		return &models.WaterAnalyticsResponse{
			UserID:      req.UserID,
			Granularity: g,
			Buckets:     models.NewBucketViews(bs),
			Chart:       models.NewChartView(aggregation.ToSeries(bs, records.FieldAmountMl), s.cfg.MaxPoints(req.Width)),
			Stats:       stats,
			History:     historyPage(data.history, data.historyPage),
			Skipped:     skipped,
		}, nil
	})
}

// Workouts builds the workout activity screen. The history page is grouped
// by local day, newest day first.
func (s *AnalyticsService) Workouts(ctx context.Context, req *models.AnalyticsRequest) (*models.WorkoutAnalyticsResponse, error) {
	metric := req.Metric
	if metric == "" {
		metric = records.FieldCaloriesBurned
	}
	if !records.IsWorkoutField(metric) {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Unknown workout metric",
			map[string]interface{}{"metric": metric, "supported": records.WorkoutFields})
	}

	return cached(ctx, s, s.analyticsCacheKey(screenWorkouts, req), func() (*models.WorkoutAnalyticsResponse, error) {
		start := time.Now()

		data, err := fetchScreen[records.WorkoutActivity](ctx, s, records.KindWorkout, req)
		if err != nil {
			return nil, err
		}

		g := s.granularity(req.GranularityParsed)
		ex := records.WorkoutExtractor

		bs := aggregation.Group(data.chart, ex, g, s.loc, records.WorkoutFields)
		skipped := data.skipped + len(data.chart) - bs.RecordCount()
		s.observe(screenWorkouts, start, len(data.chart), skipped, records.KindWorkout)

		s.logger.Info("Workout analytics completed",
			"user_id", req.UserID,
			"granularity", g,
			"metric", metric,
			"records", len(data.chart),
			"buckets", len(bs),
			"latency_ms", time.Since(start).Milliseconds(),
		)

		days := workoutDays(data.history, s.loc)
		return &models.WorkoutAnalyticsResponse{
			UserID:      req.UserID,
			Granularity: g,
			Metric:      metric,
			Buckets:     models.NewBucketViews(bs),
			Chart:       models.NewChartView(aggregation.ToSeries(bs, metric), s.cfg.MaxPoints(req.Width)),
			Stats:       aggregation.Summarize(bs.Records(), ex, records.WorkoutFields),
			PeriodStats: aggregation.SummarizeBuckets(bs, records.WorkoutFields),
			ActiveDays:  aggregation.ActiveDays(data.chart, ex, s.loc),
			History:     historyPage(days, data.historyPage),
			Skipped:     skipped,
		}, nil
	})
}

// workoutDays groups a page of activities by local day, newest day first.
// Activities keep their page order inside a day.
func workoutDays(activities []records.WorkoutActivity, loc *time.Location) []models.WorkoutDay {
	bs := aggregation.Group(activities, records.WorkoutExtractor, aggregation.GranularityDay, loc, records.WorkoutFields)
	sorted := bs.Sorted()

	days := make([]models.WorkoutDay, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		b := sorted[i]
		days = append(days, models.WorkoutDay{
			Date:       b.Key,
			Label:      b.Label,
			Activities: b.Records,
			Totals:     b.Sums,
		})
	}
	return days
}

// Weight builds the weight history screen. Buckets chart the average weight
// of their measurements.
func (s *AnalyticsService) Weight(ctx context.Context, req *models.AnalyticsRequest) (*models.WeightAnalyticsResponse, error) {
	return cached(ctx, s, s.analyticsCacheKey(screenWeight, req), func() (*models.WeightAnalyticsResponse, error) {
		start := time.Now()

		data, err := fetchScreen[records.WeightRecord](ctx, s, records.KindWeight, req)
		if err != nil {
			return nil, err
		}

		g := s.granularity(req.GranularityParsed)
		fields := []string{records.FieldWeightKg}

		bs := aggregation.Group(data.chart, records.WeightExtractor, g, s.loc, fields)
		series := aggregation.SeriesOf(bs, func(b *aggregation.Bucket[records.WeightRecord]) float64 {
			return b.Average(records.FieldWeightKg)
		})

		skipped := data.skipped + len(data.chart) - bs.RecordCount()
		s.observe(screenWeight, start, len(data.chart), skipped, records.KindWeight)

		s.logger.Info("Weight analytics completed",
			"user_id", req.UserID,
			"granularity", g,
			"records", len(data.chart),
			"buckets", len(bs),
			"latency_ms", time.Since(start).Milliseconds(),
		)

		return &models.WeightAnalyticsResponse{
			UserID:      req.UserID,
			Granularity: g,
			Buckets:     models.NewBucketViews(bs),
			Chart:       models.NewChartView(series, s.cfg.MaxPoints(req.Width)),
			Stats:       weightStats(data.chart, s.loc),
			History:     historyPage(data.history, data.historyPage),
			Skipped:     skipped,
		}, nil
	})
}

// weightStats reports latest, min, max and the change from the earliest to
// the latest readable measurement
func weightStats(recs []records.WeightRecord, loc *time.Location) models.WeightStats {
	type measurement struct {
		at time.Time
		kg float64
	}

	ms := make([]measurement, 0, len(recs))
	for _, r := range recs {
		t, ok := aggregation.ParseTimestamp(r.RecordedAt, loc)
		if !ok {
			continue
		}
		ms = append(ms, measurement{at: t, kg: r.WeightKg})
	}
	if len(ms) == 0 {
		return models.WeightStats{}
	}

	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].at.Before(ms[j].at)
	})

	stats := models.WeightStats{
		LatestKg: ms[len(ms)-1].kg,
		MinKg:    ms[0].kg,
		MaxKg:    ms[0].kg,
		Count:    len(ms),
	}
	for _, m := range ms {
		stats.MinKg = min(stats.MinKg, m.kg)
		stats.MaxKg = max(stats.MaxKg, m.kg)
	}
	stats.ChangeKg = utils.Round(stats.LatestKg-ms[0].kg, 2)
	return stats
}
