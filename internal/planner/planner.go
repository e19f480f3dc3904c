package planner

import (
	"strings"

	"autism-diet-planner/internal/diet"
)

// Build creates the fallback weekly plan for a diet type and allergy set.
//
// For every slot the first candidate (in pool order) that no allergen matches
// is chosen and repeated across all seven days. A slot with no surviving
// candidate gets CustomOption. The result depends only on the arguments.
func Build(dietType diet.DietType, allergies diet.AllergySet) WeeklyPlan {
	pool := EffectivePool(dietType)

	plan := WeeklyPlan{
		DietType:  dietType,
		Allergies: append(diet.AllergySet(nil), allergies...),
	}
	for _, slot := range diet.MealSlots {
		choice := selectDish(pool[slot], allergies)
		for _, day := range diet.Days {
			plan.cells[slot][day] = choice
		}
	}
	return plan
}

func selectDish(candidates []Dish, allergies diet.AllergySet) string {
	for _, d := range candidates {
		if !Excludes(allergies, d) {
			return d.Name
		}
	}
	return CustomOption
}

// Excludes reports whether any allergen rules the dish out. An allergen
// matches when the dish is tagged with it or when it appears in the dish name,
// ignoring case.
func Excludes(allergies diet.AllergySet, d Dish) bool {
	name := strings.ToLower(d.Name)
	for _, a := range allergies {
		for _, tag := range d.Allergens {
			if strings.EqualFold(string(tag), string(a)) {
				return true
			}
		}
		if a != "" && strings.Contains(name, strings.ToLower(string(a))) {
			return true
		}
	}
	return false
}
