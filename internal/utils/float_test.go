package utils

import (
	"encoding/json"
	"math"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		// Float types
		{"float64", float64(3.14), 3.14, true},
		{"float32", float32(2.5), 2.5, true},

		// Integers
		{"int", int(42), 42, true},
		{"int8", int8(8), 8, true},
		{"int64", int64(64), 64, true},
		{"uint16", uint16(16), 16, true},
		{"uint64", uint64(64), 64, true},
		{"negative int", int(-42), -42, true},

		// Decoded JSON
		{"json number", json.Number("550"), 550, true},
		{"json number invalid", json.Number("abc"), 0, false},
		{"numeric string", "300", 300, true},
		{"numeric string with spaces", " 12.5 ", 12.5, true},

		// Rejected values
		{"NaN", math.NaN(), 0, false},
		{"+Inf", math.Inf(1), 0, false},
		{"string", "hello", 0, false},
		{"empty string", "", 0, false},
		{"bool true", true, 0, false},
		{"nil", nil, 0, false},
		{"slice", []int{1, 2, 3}, 0, false},
		{"map", map[string]int{"a": 1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ToFloat64(tt.input)

			if ok != tt.ok {
				t.Errorf("ToFloat64(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}

			if result != tt.expected {
				t.Errorf("ToFloat64(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMustToFloat64(t *testing.T) {
	if got := MustToFloat64("not-a-number"); got != 0 {
		t.Errorf("MustToFloat64 = %v, want 0", got)
	}
	if got := MustToFloat64(int32(7)); got != 7 {
		t.Errorf("MustToFloat64 = %v, want 7", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.005, 2, 1},
		{2.345, 1, 2.3},
		{3.14159, 3, 3.142},
		{10, 0, 10},
		{7.77, -1, 7.77},
	}
	for _, tt := range tests {
		if got := Round(tt.in, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.places, got, tt.want)
		}
	}
}
