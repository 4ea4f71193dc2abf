package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/utils"
	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fitlog")
	}

	setDefaults(v)

	// FITLOG_AGGREGATION_TIMEZONE overrides aggregation.timezone
	v.SetEnvPrefix("FITLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("aggregation.timezone", d.Aggregation.Timezone)
	v.SetDefault("aggregation.default_granularity", d.Aggregation.DefaultGranularity)
	v.SetDefault("aggregation.narrow_width", d.Aggregation.NarrowWidth)
	v.SetDefault("aggregation.max_points_narrow", d.Aggregation.MaxPointsNarrow)
	v.SetDefault("aggregation.max_points_wide", d.Aggregation.MaxPointsWide)
	v.SetDefault("aggregation.chart_range_days", d.Aggregation.ChartRangeDays)

	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.redis_url", d.Store.RedisURL)
	v.SetDefault("store.key_prefix", d.Store.KeyPrefix)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5580,
			ReadTimeout:  utils.DefaultRequestTimeout,
			WriteTimeout: utils.DefaultRequestTimeout,
			BodyLimit:    4 * 1024 * 1024,
		},
		Aggregation: AggregationConfig{
			Timezone:           utils.DefaultTimezone,
			DefaultGranularity: "day",
			NarrowWidth:        utils.NarrowScreenWidth,
			MaxPointsNarrow:    utils.MaxPointsNarrow,
			MaxPointsWide:      utils.MaxPointsWide,
			ChartRangeDays:     int(utils.DefaultChartRange / (24 * time.Hour)),
		},
		Store: StoreConfig{
			Type:      string(utils.StoreTypeMemory),
			RedisURL:  "redis://localhost:6379",
			KeyPrefix: "fitlog",
		},
		Cache: CacheConfig{
			Enabled:         true,
			Type:            "memory",
			TTL:             utils.DefaultCacheTTL,
			CleanupInterval: utils.CacheJanitorInterval,
		},
		Queue: QueueConfig{
			Type:         string(utils.QueueTypeMemory),
			RedisStream:  "fitlog",
			RedisGroup:   "fitlog-ingest",
			KafkaGroupID: "fitlog-ingest",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
