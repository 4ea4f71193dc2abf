package records

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

const (
	FieldConsumptionDate = "consumptionDate"
	FieldAmountMl        = "amountMl"

	// MaxWaterAmountMl is the largest single intake the water form accepts
	MaxWaterAmountMl = 5000
)

// WaterLog is one water-intake entry
type WaterLog struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	AmountMl        float64 `json:"amountMl"`
	ConsumptionDate string  `json:"consumptionDate"`
}

func (w *WaterLog) Kind() Kind             { return KindWater }
func (w *WaterLog) LogID() string          { return w.ID }
func (w *WaterLog) SetID(id string)        { w.ID = id }
func (w *WaterLog) Owner() string          { return w.UserID }
func (w *WaterLog) SetOwner(userID string) { w.UserID = userID }
func (w *WaterLog) Timestamp() string      { return w.ConsumptionDate }

// Validate mirrors the water form rules
func (w *WaterLog) Validate(loc *time.Location) error {
	if err := validateCommon(w, FieldConsumptionDate, loc); err != nil {
		return err
	}
	if w.AmountMl <= 0 || w.AmountMl > MaxWaterAmountMl {
		return invalid(FieldAmountMl, "must be between 1 and 5000 ml")
	}
	return nil
}

// WaterExtractor reads water logs for the aggregator
var WaterExtractor = aggregation.Extractor[WaterLog]{
	Timestamp: func(w WaterLog) (interface{}, bool) {
		return w.ConsumptionDate, w.ConsumptionDate != ""
	},
	Value: func(w WaterLog, field string) interface{} {
		if field == FieldAmountMl {
			return w.AmountMl
		}
		return nil
	},
}
