package records

import (
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/aggregation"
)

const (
	FieldQuantity = "quantity"
	FieldCalories = "calories"
	FieldProtein  = "protein"
	FieldCarbs    = "carbs"
	FieldFat      = "fat"
)

// FoodFields are the amounts summed when identical foods are folded together
var FoodFields = []string{FieldQuantity, FieldCalories, FieldProtein, FieldCarbs, FieldFat}

// MealType is the meal a food entry was logged under
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealOrder is the display order of meals in the food diary
var MealOrder = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// NormalizeMeal maps free-form meal names onto the four diary meals.
// Unknown names are filed as snacks.
func NormalizeMeal(s string) MealType {
	m := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MealOrder {
		if m == known {
			return m
		}
	}
	return MealSnack
}

// FoodLog is one logged food portion (scanned or picked from the catalog)
type FoodLog struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	FoodID          string  `json:"foodId"`
	FoodName        string  `json:"foodName"`
	MealType        string  `json:"mealType"`
	Quantity        float64 `json:"quantity"`
	Calories        float64 `json:"calories"`
	Protein         float64 `json:"protein"`
	Carbs           float64 `json:"carbs"`
	Fat             float64 `json:"fat"`
	ConsumptionDate string  `json:"consumptionDate"`
}

func (f *FoodLog) Kind() Kind             { return KindFood }
func (f *FoodLog) LogID() string          { return f.ID }
func (f *FoodLog) SetID(id string)        { f.ID = id }
func (f *FoodLog) Owner() string          { return f.UserID }
func (f *FoodLog) SetOwner(userID string) { f.UserID = userID }
func (f *FoodLog) Timestamp() string      { return f.ConsumptionDate }

// Validate mirrors the food form rules
func (f *FoodLog) Validate(loc *time.Location) error {
	if err := validateCommon(f, FieldConsumptionDate, loc); err != nil {
		return err
	}
	if strings.TrimSpace(f.FoodName) == "" {
		return invalid("foodName", "is required")
	}
	if f.Quantity <= 0 {
		return invalid(FieldQuantity, "must be positive")
	}
	for _, field := range FoodFields[1:] {
		if aggregation.Number(f.Value(field)) < 0 {
			return invalid(field, "must not be negative")
		}
	}
	return nil
}

// Value returns an amount by field name
func (f FoodLog) Value(field string) interface{} {
	switch field {
	case FieldQuantity:
		return f.Quantity
	case FieldCalories:
		return f.Calories
	case FieldProtein:
		return f.Protein
	case FieldCarbs:
		return f.Carbs
	case FieldFat:
		return f.Fat
	}
	return nil
}

// FoodExtractor reads food logs for the aggregator
var FoodExtractor = aggregation.Extractor[FoodLog]{
	Timestamp: func(f FoodLog) (interface{}, bool) {
		return f.ConsumptionDate, f.ConsumptionDate != ""
	},
	Value: func(f FoodLog, field string) interface{} {
		return f.Value(field)
	},
}

// Macros holds summed nutrition amounts
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (m *Macros) add(o Macros) {
	m.Calories += o.Calories
	m.Protein += o.Protein
	m.Carbs += o.Carbs
	m.Fat += o.Fat
}

// FoodEntry is every log of one food inside one meal, folded together.
// LogIDs keeps the underlying log ids so single portions can be deleted.
type FoodEntry struct {
	FoodID   string   `json:"foodId"`
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Macros   Macros   `json:"macros"`
	LogIDs   []string `json:"logIds"`
}

// MealGroup is one meal section of the food diary
type MealGroup struct {
	MealType MealType    `json:"mealType"`
	Entries  []FoodEntry `json:"entries"`
	Totals   Macros      `json:"totals"`
}

// FoodDay is the food diary of one local calendar day
type FoodDay struct {
	Date   string      `json:"date"`
	Meals  []MealGroup `json:"meals"`
	Totals Macros      `json:"totals"`
}

// foodKey is the composite key identical food entries are folded by
func foodKey(f FoodLog) (string, bool) {
	return f.FoodID + "|" + strings.TrimSpace(f.FoodName), true
}

// GroupMeals builds the food diary of day (YYYY-MM-DD, local to loc).
// Logs from other days or with unreadable dates are ignored. Every meal of
// MealOrder is present, possibly with no entries.
func GroupMeals(logs []FoodLog, day string, loc *time.Location) FoodDay {
	byMeal := make(map[MealType][]FoodLog, len(MealOrder))
	for _, l := range logs {
		key, ok := aggregation.BucketKey(l.ConsumptionDate, aggregation.GranularityDay, loc)
		if !ok || key != day {
			continue
		}
		meal := NormalizeMeal(l.MealType)
		byMeal[meal] = append(byMeal[meal], l)
	}

	result := FoodDay{Date: day, Meals: make([]MealGroup, 0, len(MealOrder))}
	for _, meal := range MealOrder {
		group := foldMeal(meal, byMeal[meal])
		result.Totals.add(group.Totals)
		result.Meals = append(result.Meals, group)
	}
	return result
}

func foldMeal(meal MealType, logs []FoodLog) MealGroup {
	group := MealGroup{MealType: meal, Entries: make([]FoodEntry, 0)}
	if len(logs) == 0 {
		return group
	}

	buckets := aggregation.GroupByKey(logs, foodKey, nil, FoodExtractor.Value, FoodFields)

	// entries keep the order in which each food first appeared
	seen := make(map[string]bool, len(buckets))
	for _, l := range logs {
		key, _ := foodKey(l)
		if seen[key] {
			continue
		}
		seen[key] = true

		b := buckets[key]
		entry := FoodEntry{
			FoodID:   l.FoodID,
			Name:     strings.TrimSpace(l.FoodName),
			Quantity: b.Sums[FieldQuantity],
			Macros: Macros{
				Calories: b.Sums[FieldCalories],
				Protein:  b.Sums[FieldProtein],
				Carbs:    b.Sums[FieldCarbs],
				Fat:      b.Sums[FieldFat],
			},
			LogIDs: make([]string, 0, len(b.Records)),
		}
		for _, r := range b.Records {
			entry.LogIDs = append(entry.LogIDs, r.ID)
		}
		group.Totals.add(entry.Macros)
		group.Entries = append(group.Entries, entry)
	}
	return group
}
