package handlers

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Health reports liveness. The timestamp is rendered in the aggregation
// zone so a misconfigured timezone is visible without reading config.
func (h *Handler) Health(c *fiber.Ctx) error {
	now := time.Now()
	resp := models.HealthResponse{Status: "ok", Version: Version}
	if h.analytics != nil {
		loc := h.analytics.Location()
		now = now.In(loc)
		resp.Timezone = loc.String()
	}
	resp.Timestamp = now.Format(time.RFC3339)
	return c.JSON(resp)
}

// NotFound is the catch-all for unknown routes
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeNotFound,
			Message: "No route for " + c.Method() + " " + c.Path(),
			Path:    c.Path(),
		},
	})
}
