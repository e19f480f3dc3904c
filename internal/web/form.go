package web

import (
	"autism-diet-planner/internal/diet"
)

// planForm mirrors the sidebar inputs.
type planForm struct {
	AgeRange        string   `form:"age_range"`
	BodyWeightKg    int      `form:"body_weight_kg"`
	HeightCm        int      `form:"height_cm"`
	AutismSeverity  string   `form:"autism_severity"`
	DietType        string   `form:"diet_type"`
	Preferences     []string `form:"preferences"`
	Allergies       []string `form:"allergies"`
	Goal            string   `form:"goal"`
	ActivityLevel   string   `form:"activity_level"`
	HydrationLiters float64  `form:"hydration_liters"`
	IsGFCF          bool     `form:"is_gfcf"`
}

func (f planForm) profile() diet.Profile {
	p := diet.Profile{
		AgeRange:        diet.AgeRange(f.AgeRange),
		BodyWeightKg:    f.BodyWeightKg,
		HeightCm:        f.HeightCm,
		AutismSeverity:  diet.Severity(f.AutismSeverity),
		DietType:        diet.DietType(f.DietType),
		Allergies:       diet.NewAllergySet(f.Allergies...),
		Goal:            diet.Goal(f.Goal),
		ActivityLevel:   diet.ActivityLevel(f.ActivityLevel),
		HydrationLiters: f.HydrationLiters,
		IsGFCF:          f.IsGFCF,
	}
	if dt, ok := diet.ParseDietType(f.DietType); ok {
		p.DietType = dt
	}
	for _, pref := range f.Preferences {
		p.Preferences = append(p.Preferences, diet.Preference(pref))
	}
	return p
}

// formView is what the template needs to redraw the form with the user's values.
type formView struct {
	Profile           diet.Profile
	AgeRanges         []diet.AgeRange
	Severities        []diet.Severity
	DietTypes         []diet.DietType
	Preferences       []diet.Preference
	Allergens         []diet.Allergen
	Goals             []diet.Goal
	ActivityLevels    []diet.ActivityLevel
	SelectedPrefs     map[diet.Preference]bool
	SelectedAllergies map[diet.Allergen]bool
}

func newFormView(p diet.Profile) formView {
	v := formView{
		Profile:           p,
		AgeRanges:         diet.AgeRanges,
		Severities:        diet.Severities,
		DietTypes:         diet.DietTypes,
		Preferences:       diet.Preferences,
		Allergens:         diet.Allergens,
		Goals:             diet.Goals,
		ActivityLevels:    diet.ActivityLevels,
		SelectedPrefs:     make(map[diet.Preference]bool),
		SelectedAllergies: make(map[diet.Allergen]bool),
	}
	for _, pref := range p.Preferences {
		v.SelectedPrefs[pref] = true
	}
	for _, a := range p.Allergies {
		v.SelectedAllergies[a] = true
	}
	return v
}

var tips = []string{
	"Stick to routine meal times.",
	"Gradually introduce new foods.",
	"Ensure meals are visually appealing.",
	"Involve the individual in meal prep when possible.",
}
