package diet

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type AgeRange string

var AgeRanges = []AgeRange{"1-10", "11-20", "21-30", "31-40", "41-50", "51 and above"}

type Severity string

const (
	Mild     Severity = "Mild"
	Moderate Severity = "Moderate"
	Severe   Severity = "Severe"
)

var Severities = []Severity{Mild, Moderate, Severe}

type Preference string

var Preferences = []Preference{"Soft", "Crunchy", "Savory", "Sweet"}

type Goal string

var Goals = []Goal{"Improve Nutrition", "Expand Variety", "Support GI Health", "Weight Management"}

type ActivityLevel string

var ActivityLevels = []ActivityLevel{"Sedentary", "Moderately Active", "Very Active"}

// Profile is everything the user enters on the form. Only DietType and
// Allergies influence the fallback plan; the rest is forwarded to the prompt.
type Profile struct {
	AgeRange        AgeRange      `json:"age_range" validate:"required,oneof='1-10' '11-20' '21-30' '31-40' '41-50' '51 and above'"`
	BodyWeightKg    int           `json:"body_weight_kg" validate:"gte=10,lte=200"`
	HeightCm        int           `json:"height_cm" validate:"gte=50,lte=250"`
	AutismSeverity  Severity      `json:"autism_severity" validate:"required,oneof=Mild Moderate Severe"`
	DietType        DietType      `json:"diet_type" validate:"required,oneof=Vegetarian Non-Vegetarian"`
	Preferences     []Preference  `json:"preferences" validate:"dive,oneof=Soft Crunchy Savory Sweet"`
	Allergies       AllergySet    `json:"allergies" validate:"dive,oneof=Gluten Dairy Nuts Soy Eggs"`
	Goal            Goal          `json:"goal" validate:"required,oneof='Improve Nutrition' 'Expand Variety' 'Support GI Health' 'Weight Management'"`
	ActivityLevel   ActivityLevel `json:"activity_level" validate:"required,oneof=Sedentary 'Moderately Active' 'Very Active'"`
	HydrationLiters float64       `json:"hydration_liters" validate:"gte=0.5,lte=5"`
	IsGFCF          bool          `json:"is_gfcf"`
}

// DefaultProfile returns the values the form starts with.
func DefaultProfile() Profile {
	return Profile{
		AgeRange:        AgeRanges[0],
		BodyWeightKg:    50,
		HeightCm:        150,
		AutismSeverity:  Mild,
		DietType:        Vegetarian,
		Goal:            Goals[0],
		ActivityLevel:   ActivityLevels[0],
		HydrationLiters: 2.0,
	}
}

// PreferenceStrings returns the preferences as plain strings.
func (p Profile) PreferenceStrings() []string {
	out := make([]string, len(p.Preferences))
	for i, pref := range p.Preferences {
		out[i] = string(pref)
	}
	return out
}

// ValidationError lists the offending fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the profile against the ranges and vocabularies of the form.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate profile: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fieldName(fe)] = fieldMessage(fe)
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	// Slice elements come through as e.g. "Allergies[1]"; report the field.
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return fmt.Sprintf("%v is not one of %s", fe.Value(), fe.Param())
	}
	return "is invalid"
}
