package records

import (
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

const (
	FieldStartTime       = "startTime"
	FieldCaloriesBurned  = "caloriesBurned"
	FieldDurationMinutes = "durationMinutes"
	FieldSteps           = "steps"
	FieldDistanceKm      = "distanceKm"
)

// WorkoutFields are the measurements summed per workout bucket
var WorkoutFields = []string{FieldCaloriesBurned, FieldDurationMinutes, FieldSteps, FieldDistanceKm}

// WorkoutActivity is one tracked workout session
type WorkoutActivity struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	ActivityType    string  `json:"activityType"`
	StartTime       string  `json:"startTime"`
	DurationMinutes float64 `json:"durationMinutes"`
	CaloriesBurned  float64 `json:"caloriesBurned"`
	Steps           float64 `json:"steps"`
	DistanceKm      float64 `json:"distanceKm"`
}

func (a *WorkoutActivity) Kind() Kind             { return KindWorkout }
func (a *WorkoutActivity) LogID() string          { return a.ID }
func (a *WorkoutActivity) SetID(id string)        { a.ID = id }
func (a *WorkoutActivity) Owner() string          { return a.UserID }
func (a *WorkoutActivity) SetOwner(userID string) { a.UserID = userID }
func (a *WorkoutActivity) Timestamp() string      { return a.StartTime }

// Validate mirrors the workout form rules
func (a *WorkoutActivity) Validate(loc *time.Location) error {
	if err := validateCommon(a, FieldStartTime, loc); err != nil {
		return err
	}
	for _, field := range WorkoutFields {
		if aggregation.Number(a.Value(field)) < 0 {
			return invalid(field, "must not be negative")
		}
	}
	if a.DurationMinutes == 0 && a.CaloriesBurned == 0 && a.Steps == 0 && a.DistanceKm == 0 {
		return invalid("activity", "needs at least one measurement")
	}
	return nil
}

// Value returns a measurement by field name
func (a WorkoutActivity) Value(field string) interface{} {
	switch field {
	case FieldCaloriesBurned:
		return a.CaloriesBurned
	case FieldDurationMinutes:
		return a.DurationMinutes
	case FieldSteps:
		return a.Steps
	case FieldDistanceKm:
		return a.DistanceKm
	}
	return nil
}

// WorkoutExtractor reads workout activities for the aggregator
var WorkoutExtractor = aggregation.Extractor[WorkoutActivity]{
	Timestamp: func(a WorkoutActivity) (interface{}, bool) {
		return a.StartTime, a.StartTime != ""
	},
	Value: func(a WorkoutActivity, field string) interface{} {
		return a.Value(field)
	},
}

// IsWorkoutField reports whether field is a summed workout measurement
func IsWorkoutField(field string) bool {
	for _, f := range WorkoutFields {
		if f == field {
			return true
		}
	}
	return false
}
