package handlers

import (
	"errors"

	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/models"
	"github.com/fitlogapp/fitlog/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	analytics *services.AnalyticsService
}

// New creates a new handler instance
func New(logger *logging.Logger, analytics *services.AnalyticsService) *Handler {
	return &Handler{
		logger:    logger,
		analytics: analytics,
	}
}

// invalidRequest renders a validation failure returned by a models Validate
func invalidRequest(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInvalidRequest,
			Message: err.Error(),
			Path:    c.Path(),
		},
	})
}

// invalidJSON renders a body that could not be parsed
func invalidJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_JSON",
			Message: "Failed to parse JSON body",
			Path:    c.Path(),
			Details: map[string]interface{}{"error": err.Error()},
		},
	})
}

// serviceError renders an error returned by the service layer
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("Unexpected service error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
				Path:    c.Path(),
			},
		})
	}

	return c.Status(statusForCode(svcErr.Code)).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case services.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case services.CodeNotFound:
		return fiber.StatusNotFound
	case services.CodeIngestFailed:
		return fiber.StatusServiceUnavailable
	case services.CodeFetchFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
