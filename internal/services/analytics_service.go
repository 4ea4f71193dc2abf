package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/queue"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/fitlogapp/fitlog/internal/utils"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService computes the analytics screens from stored log records
// and accepts new records through the ingest queue
type AnalyticsService struct {
	logger    *logging.Logger
	store     store.Store
	cache     cache.Cache
	publisher queue.Publisher
	metrics   *metrics.Manager
	cfg       config.AggregationConfig
	loc       *time.Location
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	logger *logging.Logger,
	st store.Store,
	c cache.Cache,
	publisher queue.Publisher,
	m *metrics.Manager,
	cfg config.AggregationConfig,
) (*AnalyticsService, error) {
	loc, err := cfg.LoadLocation()
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cache.Nop{}
	}
	return &AnalyticsService{
		logger:    logger,
		store:     st,
		cache:     c,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// Location returns the timezone analytics are bucketed in
func (s *AnalyticsService) Location() *time.Location {
	return s.loc
}

func (s *AnalyticsService) granularity(g aggregation.Granularity) aggregation.Granularity {
	if g.Valid() {
		return g
	}
	return s.cfg.Granularity()
}

// chartQuery is the range the chart of a screen is built from: the requested
// range, or the configured look-back window when no start is given
func (s *AnalyticsService) chartQuery(kind records.Kind, req *models.AnalyticsRequest) store.Query {
	from := req.FromParsed
	if from.IsZero() {
		from = s.now().Add(-s.cfg.ChartRange())
	}
	return store.Query{
		Kind:   kind,
		UserID: req.UserID,
		From:   from,
		To:     req.ToParsed,
	}
}

func historyQuery(kind records.Kind, req *models.AnalyticsRequest) store.Query {
	return store.Query{
		Kind:     kind,
		UserID:   req.UserID,
		From:     req.FromParsed,
		To:       req.ToParsed,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
}

// fetched holds the two independent reads behind one analytics screen
type fetched[T any] struct {
	history     []T
	historyPage store.Page
	chart       []T
	skipped     int
}

// fetchScreen runs the history page and chart range reads concurrently
// and joins them. Undecodable payloads are skipped and counted.
func fetchScreen[T any](ctx context.Context, s *AnalyticsService, kind records.Kind, req *models.AnalyticsRequest) (*fetched[T], error) {
	ctx, cancel := context.WithTimeout(ctx, utils.FetchTimeout)
	defer cancel()

	var (
		out                          fetched[T]
		historySkipped, chartSkipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.store.List(gctx, historyQuery(kind, req))
		if err != nil {
			return err
		}
		out.historyPage = page
		out.history, historySkipped = records.DecodeAll[T](page.Payloads())
		return nil
	})
	g.Go(func() error {
		page, err := s.store.List(gctx, s.chartQuery(kind, req))
		if err != nil {
			return err
		}
		out.chart, chartSkipped = records.DecodeAll[T](page.Payloads())
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to fetch records",
			"kind", kind,
			"user_id", req.UserID,
			"error", err,
		)
		return nil, NewServiceErrorWithDetails(CodeFetchFailed, "Failed to fetch records",
			map[string]interface{}{"error": err.Error()})
	}

	out.skipped = historySkipped + chartSkipped
	return &out, nil
}

func historyPage[T any](items []T, page store.Page) models.HistoryPage[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return models.HistoryPage[T]{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		HasMore:  page.HasMore(),
	}
}

// analyticsCacheKey identifies one analytics response. The local date is
// part of the key because "today" and the default chart range move with it.
func (s *AnalyticsService) analyticsCacheKey(screen string, req *models.AnalyticsRequest) string {
	g := s.granularity(req.GranularityParsed)
	return cache.Key(req.UserID,
		screen,
		string(g),
		req.Metric,
		req.From,
		req.To,
		itoa(req.Page),
		itoa(req.PageSize),
		itoa(s.cfg.MaxPoints(req.Width)),
		s.now().In(s.loc).Format("2006-01-02"),
	)
}

// cached returns the cached response stored under key, or computes, caches
// and returns it. Cache failures never fail the request.
func cached[T any](ctx context.Context, s *AnalyticsService, key string, compute func() (*T, error)) (*T, error) {
	if data, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			s.metrics.CacheLookup(true)
			s.logger.Debug("Analytics cache hit", "key", key)
			return &v, nil
		}
	}
	s.metrics.CacheLookup(false)

	v, err := compute()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to encode analytics response for cache", "error", err)
		return v, nil
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("Failed to cache analytics response", "key", key, "error", err)
	}
	return v, nil
}

// observe records the duration and size of one aggregation
func (s *AnalyticsService) observe(screen string, start time.Time, recordCount, skipped int, kind records.Kind) {
	s.metrics.HistAnalyticsDuration.WithLabelValues(screen).Observe(time.Since(start).Seconds())
	s.metrics.HistAggregatedRecords.WithLabelValues(screen).Observe(float64(recordCount))
	s.metrics.Skipped(string(kind), skipped)
	if skipped > 0 {
		s.logger.Warn("Skipped unreadable records",
			"screen", screen,
			"skipped", skipped,
		)
	}
}
