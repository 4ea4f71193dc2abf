// Package metrics holds the prometheus collectors of the analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes
const (
	OutcomeStored   = "stored"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeAccepted = "accepted"
)

type Manager struct {
	// counters
	CounterRequests       *prometheus.CounterVec
	CounterIngested       *prometheus.CounterVec
	CounterCache          *prometheus.CounterVec
	CounterSkippedRecords *prometheus.CounterVec
	CounterPanics         prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration   prometheus.Histogram
	HistAnalyticsDuration *prometheus.HistogramVec
	HistAggregatedRecords *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterIngested := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ingested_records_total",
		Help:      "Log records seen by ingestion, by kind and outcome",
	}, []string{"kind", "outcome"})
	counterCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cache_lookups_total",
		Help:      "Analytics cache lookups by result",
	}, []string{"result"})
	counterSkipped := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "skipped_records_total",
		Help:      "Stored records that could not be decoded or bucketed",
	}, []string{"kind"})
	counterPanics := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
	)
	histAnalytics := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "analytics_duration_seconds",
			Help:      "Duration of one analytics computation (fetch + aggregation) in seconds",
		},
		[]string{"screen"},
	)
	histRecords := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			Name:      "aggregated_records",
			Help:      "Number of records folded by one aggregation",
		},
		[]string{"screen"},
	)

	return &Manager{
		CounterRequests:       counterRequests,
		CounterIngested:       counterIngested,
		CounterCache:          counterCache,
		CounterSkippedRecords: counterSkipped,
		CounterPanics:         counterPanics,
		GaugeRequests:         gaugeRequests,
		HistRequestDuration:   histReqDuration,
		HistAnalyticsDuration: histAnalytics,
		HistAggregatedRecords: histRecords,
	}
}

// Ingested counts one ingestion outcome
func (m *Manager) Ingested(kind, outcome string) {
	m.CounterIngested.WithLabelValues(kind, outcome).Inc()
}

// CacheLookup counts a cache hit or miss
func (m *Manager) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CounterCache.WithLabelValues(result).Inc()
}

// Skipped counts records dropped while reading kind
func (m *Manager) Skipped(kind string, n int) {
	if n > 0 {
		m.CounterSkippedRecords.WithLabelValues(kind).Add(float64(n))
	}
}
