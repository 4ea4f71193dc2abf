package records

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

const (
	FieldRecordedAt = "recordedAt"
	FieldWeightKg   = "weightKg"

	// MaxWeightKg is the largest weight the profile form accepts
	MaxWeightKg = 500
)

// WeightRecord is one body-weight measurement
type WeightRecord struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	WeightKg   float64 `json:"weightKg"`
	RecordedAt string  `json:"recordedAt"`
}

func (w *WeightRecord) Kind() Kind             { return KindWeight }
func (w *WeightRecord) LogID() string          { return w.ID }
func (w *WeightRecord) SetID(id string)        { w.ID = id }
func (w *WeightRecord) Owner() string          { return w.UserID }
func (w *WeightRecord) SetOwner(userID string) { w.UserID = userID }
func (w *WeightRecord) Timestamp() string      { return w.RecordedAt }

// Validate mirrors the weight form rules
func (w *WeightRecord) Validate(loc *time.Location) error {
	if err := validateCommon(w, FieldRecordedAt, loc); err != nil {
		return err
	}
	if w.WeightKg <= 0 || w.WeightKg > MaxWeightKg {
		return invalid(FieldWeightKg, "must be between 0 and 500 kg")
	}
	return nil
}

// WeightExtractor reads weight records for the aggregator
var WeightExtractor = aggregation.Extractor[WeightRecord]{
	Timestamp: func(w WeightRecord) (interface{}, bool) {
		return w.RecordedAt, w.RecordedAt != ""
	},
	Value: func(w WeightRecord, field string) interface{} {
		if field == FieldWeightKg {
			return w.WeightKg
		}
		return nil
	},
}
