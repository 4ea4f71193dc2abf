package router

import (
	"runtime/debug"

	"github.com/fitlogapp/fitlog/internal/config"
	"github.com/fitlogapp/fitlog/internal/handlers"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/metrics"
	"github.com/fitlogapp/fitlog/internal/middleware"
	"github.com/fitlogapp/fitlog/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, analytics *services.AnalyticsService,
	m *metrics.Manager, gatherer prometheus.Gatherer, cfg config.Config,
) *handlers.Handler {
	h := handlers.New(logger, analytics)

	// Global middlewares
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			m.CounterPanics.Inc()
			if cfg.IsDevelopment() {
				logger.Error("Recovered from panic", "path", c.Path(), "panic", e, "stack", string(debug.Stack()))
				return
			}
			logger.Error("Recovered from panic", "path", c.Path(), "panic", e)
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, "/health", "/metrics"))
	app.Use(metrics.RequestMetrics(m))

	// Health and metrics (no auth required)
	app.Get("/health", h.Health)
	app.Get("/metrics", metrics.Handler(gatherer))

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))

	// Ad hoc aggregation
	v1.Post("/aggregate", h.Aggregate)

	// Analytics screens
	v1.Get("/users/:user_id/water/analytics", h.WaterAnalytics)
	v1.Get("/users/:user_id/workouts/analytics", h.WorkoutAnalytics)
	v1.Get("/users/:user_id/weight/analytics", h.WeightAnalytics)
	v1.Get("/users/:user_id/food/diary", h.FoodDiary)

	// Log records
	v1.Post("/users/:user_id/logs/:kind", h.IngestLogs)
	v1.Get("/users/:user_id/logs/:kind", h.ListLogs)
	v1.Get("/users/:user_id/logs/:kind/:id", h.GetLog)
	v1.Delete("/users/:user_id/logs/:kind", h.DeleteLogs)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, analytics *services.AnalyticsService,
	m *metrics.Manager, gatherer prometheus.Gatherer, cfg config.Config,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Fitlog Analytics",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, analytics, m, gatherer, cfg)

	return app
}
