package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autism-diet-planner/internal/diet"
)

func allAllergySets() []diet.AllergySet {
	// Every subset of the vocabulary.
	var sets []diet.AllergySet
	n := len(diet.Allergens)
	for mask := 0; mask < 1<<n; mask++ {
		set := diet.AllergySet{}
		for i, a := range diet.Allergens {
			if mask&(1<<i) != 0 {
				set = append(set, a)
			}
		}
		sets = append(sets, set)
	}
	return sets
}

func poolNames(dietType diet.DietType, slot diet.MealSlot) []string {
	var names []string
	for _, d := range EffectivePool(dietType)[slot] {
		names = append(names, d.Name)
	}
	return names
}

func findDish(dietType diet.DietType, name string) (Dish, bool) {
	for _, slot := range diet.MealSlots {
		for _, d := range EffectivePool(dietType)[slot] {
			if d.Name == name {
				return d, true
			}
		}
	}
	return Dish{}, false
}

func TestBuild_VegetarianNoAllergies(t *testing.T) {
	plan := Build(diet.Vegetarian, nil)

	for _, day := range diet.Days {
		assert.Equal(t, "Idli with chutney", plan.Cell(day, diet.Breakfast), day.String())
		assert.Equal(t, "Fruit salad", plan.Cell(day, diet.MidMorningSnack), day.String())
		assert.Equal(t, "Rice with dal and sabzi", plan.Cell(day, diet.Lunch), day.String())
		assert.Equal(t, "Masala buttermilk", plan.Cell(day, diet.EveningSnack), day.String())
		assert.Equal(t, "Roti with sabzi", plan.Cell(day, diet.Dinner), day.String())
	}
}

func TestBuild_VegetarianGluten(t *testing.T) {
	plan := Build(diet.Vegetarian, diet.NewAllergySet("Gluten"))

	assert.Equal(t, "Idli with chutney", plan.Cell(diet.Monday, diet.Breakfast))
	assert.Equal(t, "Vegetable pulao", plan.Cell(diet.Monday, diet.Dinner))
	for _, row := range plan.Rows() {
		assert.NotContains(t, row.Cells, "Paratha with curd")
		assert.NotContains(t, row.Cells, "Roti with sabzi")
	}
}

func TestBuild_EveryAllergen(t *testing.T) {
	plan := Build(diet.Vegetarian, diet.NewAllergySet("Gluten", "Dairy", "Nuts", "Soy", "Eggs"))

	assert.Equal(t, "Idli with chutney", plan.Cell(diet.Friday, diet.Breakfast))
	assert.Equal(t, "Fruit salad", plan.Cell(diet.Friday, diet.MidMorningSnack))
	assert.Equal(t, "Rice with dal and sabzi", plan.Cell(diet.Friday, diet.Lunch))
	assert.Equal(t, "Vegetable soup", plan.Cell(diet.Friday, diet.EveningSnack))
	assert.Equal(t, "Vegetable pulao", plan.Cell(diet.Friday, diet.Dinner))
}

func TestBuild_Deterministic(t *testing.T) {
	for _, dt := range diet.DietTypes {
		for _, set := range allAllergySets() {
			assert.Equal(t, Build(dt, set), Build(dt, set))
		}
	}
}

func TestBuild_Coverage(t *testing.T) {
	for _, dt := range diet.DietTypes {
		for _, set := range allAllergySets() {
			plan := Build(dt, set)
			for _, slot := range diet.MealSlots {
				expected := poolNames(dt, slot)
				for _, day := range diet.Days {
					cell := plan.Cell(day, slot)
					require.NotEmpty(t, cell)
					if cell != CustomOption {
						assert.Contains(t, expected, cell, "%s/%s", dt, slot)
					}
				}
			}
		}
	}
}

func TestBuild_ConstantAcrossDays(t *testing.T) {
	plan := Build(diet.NonVegetarian, diet.NewAllergySet("Dairy"))
	for _, row := range plan.Rows() {
		require.Len(t, row.Cells, 7)
		for _, c := range row.Cells {
			assert.Equal(t, row.Cells[0], c, row.Meal)
		}
	}
}

func TestBuild_AllergyExclusion(t *testing.T) {
	for _, dt := range diet.DietTypes {
		for _, set := range allAllergySets() {
			plan := Build(dt, set)
			for _, row := range plan.Rows() {
				for _, cell := range row.Cells {
					if cell == CustomOption {
						continue
					}
					for _, a := range set {
						assert.NotContains(t, strings.ToLower(cell), strings.ToLower(string(a)))
					}
					d, ok := findDish(dt, cell)
					require.True(t, ok, cell)
					assert.False(t, Excludes(set, d), "%s chosen despite %v", cell, set)
				}
			}
		}
	}
}

func TestBuild_VegetarianScoping(t *testing.T) {
	nonVeg := NonVegetarianDishes()
	require.NotEmpty(t, nonVeg)

	for _, set := range allAllergySets() {
		plan := Build(diet.Vegetarian, set)
		for _, row := range plan.Rows() {
			for _, cell := range row.Cells {
				assert.NotContains(t, nonVeg, cell)
			}
		}
	}
}

func TestBuild_SentinelWhenEverythingMatches(t *testing.T) {
	vowels := diet.NewAllergySet("a", "e", "i", "o", "u")

	for _, dt := range diet.DietTypes {
		plan := Build(dt, vowels)
		for _, slot := range diet.MealSlots {
			for _, day := range diet.Days {
				assert.Equal(t, CustomOption, plan.Cell(day, slot))
			}
		}
	}
}

func TestBuild_NonVegetarianFallsThroughToNonVegDishes(t *testing.T) {
	// Dairy and Nuts knock out every vegetarian evening snack, leaving the
	// appended non-vegetarian candidates.
	set := diet.NewAllergySet("Dairy", "Nuts")
	assert.Equal(t, "Vegetable soup", Build(diet.NonVegetarian, set).Cell(diet.Monday, diet.EveningSnack))

	set = diet.NewAllergySet("Dairy", "Nuts", "soup")
	assert.Equal(t, "Egg salad", Build(diet.NonVegetarian, set).Cell(diet.Monday, diet.EveningSnack))
	assert.Equal(t, CustomOption, Build(diet.Vegetarian, set).Cell(diet.Monday, diet.EveningSnack))
}

func TestEffectivePool_Order(t *testing.T) {
	names := poolNames(diet.NonVegetarian, diet.Breakfast)
	assert.Equal(t, []string{
		"Idli with chutney", "Oats porridge", "Poha", "Paratha with curd", "Dosa with sambar",
		"Egg bhurji with toast", "Chicken sandwich", "Egg dosa",
	}, names)

	assert.Len(t, poolNames(diet.Vegetarian, diet.Breakfast), 5)
	assert.Len(t, poolNames("Pescatarian", diet.Breakfast), 5)
}

func TestExcludes(t *testing.T) {
	d := Dish{Name: "Egg dosa", Allergens: []diet.Allergen{diet.Eggs}}

	assert.True(t, Excludes(diet.NewAllergySet("Eggs"), d), "tag match")
	assert.True(t, Excludes(diet.NewAllergySet("egg"), d), "case-insensitive name match")
	assert.False(t, Excludes(diet.NewAllergySet("Soy"), d))
	assert.False(t, Excludes(nil, d))
	assert.True(t, Excludes(diet.NewAllergySet("Nuts"), Dish{Name: "Handful of nuts"}))
}

func TestEmptyPoolGivesSentinel(t *testing.T) {
	assert.Equal(t, CustomOption, selectDish(nil, nil))
}

func TestBuild_DoesNotAliasAllergies(t *testing.T) {
	set := diet.NewAllergySet("Nuts")
	plan := Build(diet.Vegetarian, set)
	set[0] = "Dairy"

	assert.Equal(t, diet.AllergySet{diet.Nuts}, plan.Allergies)
}
