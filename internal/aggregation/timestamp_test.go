package aggregation

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)

	tests := []struct {
		name     string
		input    interface{}
		expected time.Time
		ok       bool
	}{
		{
			name:     "RFC3339 UTC",
			input:    "2025-07-20T10:00:00Z",
			expected: time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "RFC3339 with offset and millis",
			input:    "2025-07-20T10:00:00.250+07:00",
			expected: time.Date(2025, 7, 20, 3, 0, 0, 250*int(time.Millisecond), time.UTC),
			ok:       true,
		},
		{
			name:     "date only is a local calendar date",
			input:    "2025-07-20",
			expected: time.Date(2025, 7, 20, 0, 0, 0, 0, loc),
			ok:       true,
		},
		{
			name:     "local datetime without offset",
			input:    "2025-07-20T23:15:00",
			expected: time.Date(2025, 7, 20, 23, 15, 0, 0, loc),
			ok:       true,
		},
		{
			name:     "space separated datetime",
			input:    "2025-07-20 06:45:10",
			expected: time.Date(2025, 7, 20, 6, 45, 10, 0, loc),
			ok:       true,
		},
		{
			name:     "epoch seconds",
			input:    int64(1752946200),
			expected: time.Date(2025, 7, 19, 17, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "epoch milliseconds as float",
			input:    float64(1752946200000),
			expected: time.Date(2025, 7, 19, 17, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "epoch as json.Number",
			input:    json.Number("1752946200"),
			expected: time.Date(2025, 7, 19, 17, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "epoch as numeric string",
			input:    "1752946200000",
			expected: time.Date(2025, 7, 19, 17, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "time.Time passthrough",
			input:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			expected: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			ok:       true,
		},
		{name: "malformed string", input: "not-a-date", ok: false},
		{name: "empty string", input: "", ok: false},
		{name: "nil", input: nil, ok: false},
		{name: "zero epoch", input: 0, ok: false},
		{name: "negative epoch", input: -5, ok: false},
		{name: "NaN", input: math.NaN(), ok: false},
		{name: "NaN string", input: "NaN", ok: false},
		{name: "zero time", input: time.Time{}, ok: false},
		{name: "nil time pointer", input: (*time.Time)(nil), ok: false},
		{name: "bool", input: true, ok: false},
		{name: "invalid calendar date", input: "2025-02-30", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input, loc)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("ParseTimestamp(%v) = %s, want %s", tt.input,
					got.Format(time.RFC3339Nano), tt.expected.Format(time.RFC3339Nano))
			}
		})
	}
}

func TestParseTimestamp_NilLocationDefaultsToUTC(t *testing.T) {
	got, ok := ParseTimestamp("2025-07-20", nil)
	if !ok {
		t.Fatal("expected date to parse")
	}
	if !got.Equal(time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %s, want midnight UTC", got)
	}
}
