package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// LoadLocation resolves the configured timezone
func (c *AggregationConfig) LoadLocation() (*time.Location, error) {
	return ParseLocation(c.Timezone)
}

// ParseLocation resolves a timezone.
// Supports formats:
//   - IANA timezone names: "Asia/Ho_Chi_Minh", "UTC"
//   - Offset format: "+07:00", "-05:00"
//
// An empty timezone resolves to UTC.
func ParseLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}

	if loc, err := parseOffsetTimezone(tz); err == nil {
		return loc, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Location returns the configured timezone, or UTC if it cannot be resolved
func (c *AggregationConfig) Location() *time.Location {
	loc, err := c.LoadLocation()
	if err != nil {
		return time.UTC
	}
	return loc
}

// Granularity returns the default granularity, falling back to day
func (c *AggregationConfig) Granularity() aggregation.Granularity {
	g, err := aggregation.ParseGranularity(c.DefaultGranularity)
	if err != nil {
		return aggregation.GranularityDay
	}
	return g
}

// MaxPoints returns the series limit for a screen of the given width
func (c *AggregationConfig) MaxPoints(width int) int {
	if width > 0 && width < c.NarrowWidth {
		return c.MaxPointsNarrow
	}
	return c.MaxPointsWide
}

// ChartRange returns the default lookback window of chart fetches
func (c *AggregationConfig) ChartRange() time.Duration {
	return time.Duration(c.ChartRangeDays) * 24 * time.Hour
}

// parseOffsetTimezone parses timezone offset format like "+07:00", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, _ := strconv.Atoi(matches[2])
	minutes, _ := strconv.Atoi(matches[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("offset out of range: %s", offset)
	}

	offsetSeconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(offset, offsetSeconds), nil
}
