package handlers

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/gofiber/fiber/v2"
)

// analyticsRequest parses and validates the query of an analytics screen
func (h *Handler) analyticsRequest(c *fiber.Ctx) (*models.AnalyticsRequest, error) {
	var req models.AnalyticsRequest
	if err := c.QueryParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid query parameters: "+err.Error())
	}
	req.UserID = c.Params("user_id")
	if err := req.Validate(h.analytics.Location()); err != nil {
		return nil, err
	}
	return &req, nil
}

// WaterAnalytics handles the water-intake screen
// GET /v1/users/:user_id/water/analytics?granularity=&from=&to=&page=&page_size=&width=
func (h *Handler) WaterAnalytics(c *fiber.Ctx) error {
	req, err := h.analyticsRequest(c)
	if err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.Water(c.UserContext(), req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// WorkoutAnalytics handles the workout activity screen
// GET /v1/users/:user_id/workouts/analytics?granularity=&metric=&from=&to=&page=&page_size=&width=
func (h *Handler) WorkoutAnalytics(c *fiber.Ctx) error {
	req, err := h.analyticsRequest(c)
	if err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.Workouts(c.UserContext(), req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// WeightAnalytics handles the weight history screen
// GET /v1/users/:user_id/weight/analytics?granularity=&from=&to=&page=&page_size=&width=
func (h *Handler) WeightAnalytics(c *fiber.Ctx) error {
	req, err := h.analyticsRequest(c)
	if err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.Weight(c.UserContext(), req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// FoodDiary handles the food log of one day
// GET /v1/users/:user_id/food/diary?date=YYYY-MM-DD
func (h *Handler) FoodDiary(c *fiber.Ctx) error {
	req := models.FoodDiaryRequest{
		UserID: c.Params("user_id"),
		Date:   c.Query("date"),
	}
	if err := req.Validate(h.analytics.Location(), time.Now()); err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.FoodDiary(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}

// Aggregate folds records supplied in the body
// POST /v1/aggregate
func (h *Handler) Aggregate(c *fiber.Ctx) error {
	var req models.AggregateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c, err)
	}
	if err := req.Validate(); err != nil {
		return invalidRequest(c, err)
	}

	resp, err := h.analytics.Aggregate(c.UserContext(), &req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(resp)
}
