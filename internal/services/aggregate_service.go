package services

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/models"
)

// Aggregate folds records supplied in the request. Nothing is read from or
// written to the store.
func (s *AnalyticsService) Aggregate(_ context.Context, req *models.AggregateRequest) (*models.AggregateResponse, error) {
	start := time.Now()

	loc := s.loc
	if req.Timezone != "" {
		parsed, err := config.ParseLocation(req.Timezone)
		if err != nil {
			return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "Invalid timezone",
				map[string]interface{}{"timezone": req.Timezone, "error": err.Error()})
		}
		loc = parsed
	}

	maxPoints := req.MaxPoints
	if maxPoints == 0 && req.Width > 0 {
		maxPoints = s.cfg.MaxPoints(req.Width)
	}

	ex := aggregation.MapExtractor(req.TimestampField)
	bs := aggregation.Group(req.Records, ex, req.GranularityParsed, loc, req.SumFields)
	skipped := len(req.Records) - bs.RecordCount()

	s.metrics.HistAnalyticsDuration.WithLabelValues(screenAdHoc).Observe(time.Since(start).Seconds())
	s.metrics.HistAggregatedRecords.WithLabelValues(screenAdHoc).Observe(float64(len(req.Records)))

	s.logger.Debug("Ad hoc aggregation completed",
		"records", len(req.Records),
		"buckets", len(bs),
		"skipped", skipped,
		"granularity", req.GranularityParsed,
	)

	return &models.AggregateResponse{
		Granularity: req.GranularityParsed,
		Timezone:    loc.String(),
		Buckets:     models.NewBucketViews(bs),
		Chart:       models.NewChartView(aggregation.ToSeries(bs, req.SeriesField), maxPoints),
		Stats:       aggregation.Summarize(bs.Records(), ex, req.SumFields),
		Records:     len(req.Records),
		Skipped:     skipped,
	}, nil
}
