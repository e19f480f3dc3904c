package planner

import "autism-diet-planner/internal/diet"

// Dish is a candidate for a meal slot. Allergens is the authoritative list of
// allergy tags the dish carries, independent of its display name.
type Dish struct {
	Name      string
	Allergens []diet.Allergen
}

// CandidatePool maps every meal slot to its ordered candidates.
type CandidatePool map[diet.MealSlot][]Dish

func dish(name string, allergens ...diet.Allergen) Dish {
	return Dish{Name: name, Allergens: allergens}
}

var vegetarianPool = CandidatePool{
	diet.Breakfast: {
		dish("Idli with chutney"),
		dish("Oats porridge", diet.Gluten, diet.Dairy),
		dish("Poha", diet.Nuts),
		dish("Paratha with curd", diet.Gluten, diet.Dairy),
		dish("Dosa with sambar"),
	},
	diet.MidMorningSnack: {
		dish("Fruit salad"),
		dish("Roasted makhana", diet.Dairy),
		dish("Peanut chikki", diet.Nuts),
		dish("Sprouts chaat"),
	},
	diet.Lunch: {
		dish("Rice with dal and sabzi"),
		dish("Roti with paneer curry", diet.Gluten, diet.Dairy),
		dish("Vegetable khichdi", diet.Dairy),
		dish("Curd rice", diet.Dairy),
	},
	diet.EveningSnack: {
		dish("Masala buttermilk", diet.Dairy),
		dish("Vegetable soup"),
		dish("Handful of nuts", diet.Nuts),
	},
	diet.Dinner: {
		dish("Roti with sabzi", diet.Gluten),
		dish("Vegetable pulao"),
		dish("Moong dal dosa with chutney"),
		dish("Light dal khichdi"),
	},
}

var nonVegetarianPool = CandidatePool{
	diet.Breakfast: {
		dish("Egg bhurji with toast", diet.Eggs, diet.Gluten),
		dish("Chicken sandwich", diet.Gluten),
		dish("Egg dosa", diet.Eggs),
	},
	diet.MidMorningSnack: {
		dish("Boiled eggs", diet.Eggs),
		dish("Chicken soup"),
	},
	diet.Lunch: {
		dish("Chicken curry with rice"),
		dish("Fish curry with rice"),
		dish("Egg fried rice", diet.Eggs, diet.Soy),
	},
	diet.EveningSnack: {
		dish("Grilled chicken pieces", diet.Dairy),
		dish("Egg salad", diet.Eggs),
	},
	diet.Dinner: {
		dish("Fish fry with vegetables"),
		dish("Chicken biryani", diet.Dairy),
		dish("Egg curry with roti", diet.Eggs, diet.Gluten),
	},
}

// EffectivePool returns the candidates visible for a diet type. Non-vegetarian
// plans see every vegetarian dish first, followed by the non-vegetarian ones.
// Any other value gets the vegetarian pool.
func EffectivePool(dietType diet.DietType) CandidatePool {
	pool := make(CandidatePool, len(diet.MealSlots))
	for _, slot := range diet.MealSlots {
		candidates := append([]Dish(nil), vegetarianPool[slot]...)
		if dietType == diet.NonVegetarian {
			candidates = append(candidates, nonVegetarianPool[slot]...)
		}
		pool[slot] = candidates
	}
	return pool
}

// NonVegetarianDishes returns the names of dishes only offered to
// non-vegetarian plans.
func NonVegetarianDishes() []string {
	var names []string
	for _, slot := range diet.MealSlots {
		for _, d := range nonVegetarianPool[slot] {
			names = append(names, d.Name)
		}
	}
	return names
}
