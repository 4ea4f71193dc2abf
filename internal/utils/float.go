package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat64 converts a decoded record value to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Supports all Go numeric kinds, json.Number and numeric strings ("12.5", " 300 ").
// NaN and ±Inf are rejected so they can never leak into sums.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MustToFloat64 converts a value to float64, returning 0 if conversion fails.
// Use this when you need a default value instead of checking the ok return.
func MustToFloat64(v interface{}) float64 {
	f, _ := ToFloat64(v)
	return f
}

// Round rounds f to the given number of decimal places.
func Round(f float64, places int) float64 {
	if places < 0 {
		return f
	}
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}
