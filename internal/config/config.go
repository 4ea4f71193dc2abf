package config

import (
	"fmt"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Store       StoreConfig       `mapstructure:"store"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body in bytes
}

// AggregationConfig controls how log records are bucketed and charted
type AggregationConfig struct {
	Timezone           string `mapstructure:"timezone"`            // IANA name or offset ("+07:00")
	DefaultGranularity string `mapstructure:"default_granularity"` // day, week or month
	NarrowWidth        int    `mapstructure:"narrow_width"`        // Screens narrower than this get fewer points
	MaxPointsNarrow    int    `mapstructure:"max_points_narrow"`
	MaxPointsWide      int    `mapstructure:"max_points_wide"`
	ChartRangeDays     int    `mapstructure:"chart_range_days"` // Default lookback of the chart fetch
}

// StoreConfig represents record store configuration
type StoreConfig struct {
	Type          string `mapstructure:"type"` // memory (default) or redis
	RedisURL      string `mapstructure:"redis_url"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// CacheConfig represents analytics response cache configuration
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Type            string        `mapstructure:"type"` // memory (default) or redis
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // Memory backend janitor interval
	RedisURL        string        `mapstructure:"redis_url"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "fitlog")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "fitlog-ingest")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Aggregation.Validate(); err != nil {
		return fmt.Errorf("aggregation config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit must not be negative")
	}

	return nil
}

// Validate validates aggregation configuration
func (c *AggregationConfig) Validate() error {
	if _, err := c.LoadLocation(); err != nil {
		return err
	}

	if _, err := aggregation.ParseGranularity(c.DefaultGranularity); err != nil {
		return fmt.Errorf("default_granularity: %w", err)
	}

	if c.NarrowWidth < 0 {
		return fmt.Errorf("narrow_width must not be negative")
	}

	if c.MaxPointsNarrow < 1 || c.MaxPointsWide < 1 {
		return fmt.Errorf("max_points_narrow and max_points_wide must be at least 1")
	}

	if c.ChartRangeDays < 1 {
		return fmt.Errorf("chart_range_days must be at least 1")
	}

	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch c.Type {
	case "", "memory":
		return nil
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for redis store")
		}
		return nil
	default:
		return fmt.Errorf("store.type must be 'memory' or 'redis', got %q", c.Type)
	}
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	switch c.Type {
	case "", "memory":
		if c.CleanupInterval <= 0 {
			return fmt.Errorf("cache.cleanup_interval must be positive")
		}
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.type must be 'memory' or 'redis', got %q", c.Type)
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s queue", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 && c.URL == "" {
			return fmt.Errorf("queue.kafka_brokers or queue.url is required for kafka queue")
		}
	default:
		return fmt.Errorf("unsupported queue.type: %s", c.Type)
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
