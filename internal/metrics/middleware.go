package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestMetrics records request count, duration and in-flight requests
func RequestMetrics(m *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.GaugeRequests.Inc()
		defer m.GaugeRequests.Dec()

		defer func(begin time.Time) {
			m.HistRequestDuration.Observe(time.Since(begin).Seconds())
		}(time.Now())

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.CounterRequests.With(prometheus.Labels{
			"method": c.Method(),
			"status": strconv.Itoa(status),
		}).Inc()

		return err
	}
}

// Handler serves the registry in the prometheus text format
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
