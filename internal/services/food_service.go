package services

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog/internal/cache"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/records"
	"github.com/fitlogapp/fitlog/internal/store"
	"github.com/fitlogapp/fitlog/internal/utils"
)

// FoodDiary builds the food log of one local day, grouped by meal
func (s *AnalyticsService) FoodDiary(ctx context.Context, req *models.FoodDiaryRequest) (*models.FoodDiaryResponse, error) {
	key := cache.Key(req.UserID, screenFood, req.DateKey)

	return cached(ctx, s, key, func() (*models.FoodDiaryResponse, error) {
		start := time.Now()

		fetchCtx, cancel := context.WithTimeout(ctx, utils.FetchTimeout)
		defer cancel()

		page, err := s.store.List(fetchCtx, store.Query{
			Kind:   records.KindFood,
			UserID: req.UserID,
			From:   req.Start,
			To:     req.End,
		})
		if err != nil {
			s.logger.Error("Failed to fetch food logs",
				"user_id", req.UserID,
				"date", req.DateKey,
				"error", err,
			)
			return nil, NewServiceErrorWithDetails(CodeFetchFailed, "Failed to fetch food logs",
				map[string]interface{}{"error": err.Error()})
		}

		logs, skipped := records.DecodeAll[records.FoodLog](page.Payloads())
		day := records.GroupMeals(logs, req.DateKey, s.loc)
		s.observe(screenFood, start, len(logs), skipped, records.KindFood)

		s.logger.Info("Food diary completed",
			"user_id", req.UserID,
			"date", req.DateKey,
			"records", len(logs),
			"latency_ms", time.Since(start).Milliseconds(),
		)

		return &models.FoodDiaryResponse{
			UserID:  req.UserID,
			FoodDay: day,
		}, nil
	})
}
