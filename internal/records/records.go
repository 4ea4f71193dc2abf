// Package records defines the log record types produced by the mobile app
// screens and how the aggregator reads them.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

// Kind identifies a log record type
type Kind string

const (
	KindWater   Kind = "water"
	KindWorkout Kind = "workout"
	KindWeight  Kind = "weight"
	KindFood    Kind = "food"
)

// Kinds lists every supported kind
var Kinds = []Kind{KindWater, KindWorkout, KindWeight, KindFood}

// ErrUnknownKind is returned for unsupported record kinds
var ErrUnknownKind = errors.New("unknown record kind")

// ParseKind parses a record kind name
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Log is implemented by every record type
type Log interface {
	Kind() Kind
	LogID() string
	SetID(id string)
	Owner() string
	SetOwner(userID string)
	// Timestamp returns the raw timestamp exactly as the API sent it
	Timestamp() string
	Validate(loc *time.Location) error
}

// ValidationError describes the first invalid field of a record
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// validateCommon checks the fields every record needs
func validateCommon(l Log, timestampField string, loc *time.Location) error {
	if strings.TrimSpace(l.Owner()) == "" {
		return invalid("userId", "is required")
	}
	if _, ok := aggregation.ParseTimestamp(l.Timestamp(), loc); !ok {
		return invalid(timestampField, "must be an ISO-8601 date/time or epoch")
	}
	return nil
}

// New returns an empty record of the given kind
func New(kind Kind) (Log, error) {
	switch kind {
	case KindWater:
		return &WaterLog{}, nil
	case KindWorkout:
		return &WorkoutActivity{}, nil
	case KindWeight:
		return &WeightRecord{}, nil
	case KindFood:
		return &FoodLog{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Decode unmarshals a JSON record of the given kind
func Decode(kind Kind, data []byte) (Log, error) {
	l, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", kind, err)
	}
	return l, nil
}

// Encode marshals a record to JSON
func Encode(l Log) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", l.Kind(), err)
	}
	return data, nil
}

// DecodeAll unmarshals a list of stored payloads into typed records.
// Payloads that fail to decode are skipped and counted.
func DecodeAll[T any](payloads [][]byte) ([]T, int) {
	out := make([]T, 0, len(payloads))
	skipped := 0
	for _, p := range payloads {
		var v T
		if err := json.Unmarshal(p, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
