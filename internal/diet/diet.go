// Package diet holds the vocabulary of the planner: meal slots, days, diet
// types, allergens and the profile collected from the user.
package diet

import "strings"

// MealSlot is one of the five daily eating occasions tracked by a plan.
type MealSlot int

const (
	Breakfast MealSlot = iota
	MidMorningSnack
	Lunch
	EveningSnack
	Dinner
)

// MealSlots lists every slot in display order.
var MealSlots = []MealSlot{Breakfast, MidMorningSnack, Lunch, EveningSnack, Dinner}

var mealSlotNames = [...]string{"Breakfast", "Mid-Morning Snack", "Lunch", "Evening Snack", "Dinner"}

func (s MealSlot) String() string {
	if s < 0 || int(s) >= len(mealSlotNames) {
		return "Unknown"
	}
	return mealSlotNames[s]
}

// Day is a day of the planning week, starting on Monday.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days lists the week in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Day) String() string {
	if d < 0 || int(d) >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[d]
}

// DietType selects which candidate pools are visible to the planner.
type DietType string

const (
	Vegetarian    DietType = "Vegetarian"
	NonVegetarian DietType = "Non-Vegetarian"
)

var DietTypes = []DietType{Vegetarian, NonVegetarian}

// ParseDietType accepts the display label as well as a few common spellings.
func ParseDietType(s string) (DietType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vegetarian", "veg":
		return Vegetarian, true
	case "non-vegetarian", "nonvegetarian", "non vegetarian", "non-veg", "nonveg":
		return NonVegetarian, true
	}
	return "", false
}

// Allergen is a tag from the allergy vocabulary. Values outside the
// vocabulary are allowed in an AllergySet and simply never match.
type Allergen string

const (
	Gluten Allergen = "Gluten"
	Dairy  Allergen = "Dairy"
	Nuts   Allergen = "Nuts"
	Soy    Allergen = "Soy"
	Eggs   Allergen = "Eggs"
)

var Allergens = []Allergen{Gluten, Dairy, Nuts, Soy, Eggs}

// AllergySet is an ordered, duplicate-free set of allergen tags. The order is
// the order in which the user selected them.
type AllergySet []Allergen

// NewAllergySet builds a set from raw tags, dropping blanks and duplicates.
func NewAllergySet(tags ...string) AllergySet {
	set := make(AllergySet, 0, len(tags))
	seen := make(map[Allergen]struct{}, len(tags))
	for _, tag := range tags {
		a := Allergen(strings.TrimSpace(tag))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		set = append(set, a)
	}
	return set
}

// Contains reports whether the tag is in the set.
func (s AllergySet) Contains(a Allergen) bool {
	for _, tag := range s {
		if tag == a {
			return true
		}
	}
	return false
}

// Strings returns the tags as plain strings.
func (s AllergySet) Strings() []string {
	out := make([]string, len(s))
	for i, a := range s {
		out[i] = string(a)
	}
	return out
}
