package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// HTTP Handler Timeouts
const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// FetchTimeout bounds the concurrent list + chart fetches of one analytics request
	FetchTimeout = 10 * time.Second

	// IngestPublishTimeout is the timeout for publishing an ingested record to the queue
	IngestPublishTimeout = 5 * time.Second

	// ShutdownTimeout is the graceful shutdown window for the HTTP server
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Aggregation Constants
// =============================================================================

const (
	// DefaultTimezone is the regional offset the mobile screens display in
	DefaultTimezone = "+07:00"

	// MaxPointsNarrow is the chart point cap on narrow screens
	MaxPointsNarrow = 8

	// MaxPointsWide is the chart point cap on regular screens
	MaxPointsWide = 10

	// NarrowScreenWidth is the width (dp) below which a screen counts as narrow
	NarrowScreenWidth = 400
)

// =============================================================================
// Paging Constants
// =============================================================================

const (
	// DefaultPageSize is the page size used by list screens
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowed page size
	MaxPageSize = 200

	// DefaultChartRange is how far back chart queries reach when no range is given
	DefaultChartRange = 365 * 24 * time.Hour
)

// =============================================================================
// Cache Constants
// =============================================================================

const (
	// DefaultCacheTTL is how long an analytics response stays cached
	DefaultCacheTTL = 2 * time.Minute

	// CacheJanitorInterval is how often the memory cache evicts expired entries
	CacheJanitorInterval = time.Minute
)

// =============================================================================
// Queue Type Constants
// =============================================================================
// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (default, single process)
	QueueTypeMemory QueueType = "memory"
)

// StoreType selects the record store backend
type StoreType string

const (
	// StoreTypeMemory keeps records in process memory
	StoreTypeMemory StoreType = "memory"

	// StoreTypeRedis keeps records in Redis sorted sets
	StoreTypeRedis StoreType = "redis"
)
