package aggregation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/utils"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 seconds is ~33658 AD, 1e12 milliseconds is 2001.
const epochMillisThreshold = 1e12

// maxEpochMillis rejects values that would overflow time.UnixMilli
const maxEpochMillis = 1e15

// Layouts without an offset are read as wall-clock time in the target location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp converts a raw record timestamp into a time.Time.
//
// Accepted inputs: time.Time, *time.Time, ISO-8601 strings (with or without
// offset, date-only included) and epoch seconds or milliseconds as numbers,
// json.Number or numeric strings. It returns false for anything it cannot
// read, including empty strings, zero times and a zero epoch.
func ParseTimestamp(v interface{}, loc *time.Location) (time.Time, bool) {
	loc = location(loc)

	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case string:
		return parseTimestampString(val, loc)
	case json.Number:
		return parseTimestampString(val.String(), loc)
	}

	f, ok := utils.ToFloat64(v)
	if !ok {
		return time.Time{}, false
	}
	return fromEpoch(f)
}

func parseTimestampString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}

	return time.Time{}, false
}

func fromEpoch(f float64) (time.Time, bool) {
	if f <= 0 || f >= maxEpochMillis || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f >= epochMillisThreshold {
		return time.UnixMilli(int64(f)), true
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec), true
}

// location defaults a nil location to UTC
func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
