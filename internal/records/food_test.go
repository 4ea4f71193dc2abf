package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupMeals(t *testing.T) {
	logs := []FoodLog{
		{ID: "1", FoodID: "rice", FoodName: "Rice", MealType: "lunch", Quantity: 1, Calories: 200, Carbs: 45, ConsumptionDate: "2025-07-20T05:00:00Z"},
		{ID: "2", FoodID: "egg", FoodName: "Egg", MealType: "breakfast", Quantity: 2, Calories: 140, Protein: 12, Fat: 10, ConsumptionDate: "2025-07-20T00:30:00Z"},
		{ID: "3", FoodID: "rice", FoodName: "Rice", MealType: "Lunch", Quantity: 1, Calories: 200, Carbs: 45, ConsumptionDate: "2025-07-20T05:10:00Z"},
		{ID: "4", FoodID: "tea", FoodName: "Milk tea", MealType: "afternoon", Quantity: 1, Calories: 300, ConsumptionDate: "2025-07-20T09:00:00Z"},
		{ID: "5", FoodID: "rice", FoodName: "Rice", MealType: "dinner", Quantity: 1, Calories: 200, ConsumptionDate: "2025-07-21T12:00:00Z"},
		{ID: "6", FoodID: "rice", FoodName: "Rice", MealType: "lunch", Quantity: 1, Calories: 200, ConsumptionDate: "not-a-date"},
	}

	day := GroupMeals(logs, "2025-07-20", ict)

	require.Len(t, day.Meals, 4)
	assert.Equal(t, "2025-07-20", day.Date)

	breakfast := day.Meals[0]
	assert.Equal(t, MealBreakfast, breakfast.MealType)
	require.Len(t, breakfast.Entries, 1)
	assert.Equal(t, []string{"2"}, breakfast.Entries[0].LogIDs)

	lunch := day.Meals[1]
	assert.Equal(t, MealLunch, lunch.MealType)
	require.Len(t, lunch.Entries, 1)
	rice := lunch.Entries[0]
	assert.Equal(t, "Rice", rice.Name)
	assert.Equal(t, 2.0, rice.Quantity)
	assert.Equal(t, 400.0, rice.Macros.Calories)
	assert.Equal(t, 90.0, rice.Macros.Carbs)
	assert.Equal(t, []string{"1", "3"}, rice.LogIDs)

	dinner := day.Meals[2]
	assert.Empty(t, dinner.Entries)
	assert.NotNil(t, dinner.Entries)

	snack := day.Meals[3]
	require.Len(t, snack.Entries, 1)
	assert.Equal(t, "Milk tea", snack.Entries[0].Name)

	assert.Equal(t, 840.0, day.Totals.Calories)
	assert.Equal(t, 12.0, day.Totals.Protein)
}

func TestGroupMeals_SameFoodIDDifferentName(t *testing.T) {
	logs := []FoodLog{
		{ID: "1", FoodID: "f1", FoodName: "Banh mi", MealType: "breakfast", Quantity: 1, Calories: 350, ConsumptionDate: "2025-07-20"},
		{ID: "2", FoodID: "f1", FoodName: "Banh mi (egg)", MealType: "breakfast", Quantity: 1, Calories: 420, ConsumptionDate: "2025-07-20"},
	}

	day := GroupMeals(logs, "2025-07-20", ict)
	entries := day.Meals[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "Banh mi", entries[0].Name)
	assert.Equal(t, "Banh mi (egg)", entries[1].Name)
}

func TestGroupMeals_Empty(t *testing.T) {
	day := GroupMeals(nil, "2025-07-20", ict)
	require.Len(t, day.Meals, 4)
	assert.Equal(t, Macros{}, day.Totals)
	for _, m := range day.Meals {
		assert.NotNil(t, m.Entries)
	}
}

func TestNormalizeMeal(t *testing.T) {
	assert.Equal(t, MealDinner, NormalizeMeal(" DINNER "))
	assert.Equal(t, MealSnack, NormalizeMeal("supper"))
	assert.Equal(t, MealSnack, NormalizeMeal(""))
}
