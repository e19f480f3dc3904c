package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"autism-diet-planner/internal/diet"
)

// profileKeys maps accepted spellings to canonical keys.
var profileKeys = map[string]string{
	"age":             "age",
	"age range":       "age",
	"weight":          "weight",
	"body weight":     "weight",
	"height":          "height",
	"severity":        "severity",
	"autism severity": "severity",
	"diet":            "diet",
	"diet type":       "diet",
	"preferences":     "preferences",
	"preferred foods": "preferences",
	"allergies":       "allergies",
	"goal":            "goal",
	"primary goal":    "goal",
	"activity":        "activity",
	"activity level":  "activity",
	"hydration":       "hydration",
	"water":           "hydration",
	"gfcf":            "gfcf",
}

const usageText = `Send your details, one per line, as "key: value". Anything you leave out keeps its default.

age: 1-10 | 11-20 | 21-30 | 31-40 | 41-50 | 51 and above
weight: 10-200 (kg, default 50)
height: 50-250 (cm, default 150)
severity: Mild | Moderate | Severe
diet: Vegetarian | Non-Vegetarian
preferences: Soft, Crunchy, Savory, Sweet
allergies: Gluten, Dairy, Nuts, Soy, Eggs
goal: Improve Nutrition | Expand Variety | Support GI Health | Weight Management
activity: Sedentary | Moderately Active | Very Active
hydration: 0.5-5.0 (liters/day, default 2.0)
gfcf: yes | no

/reset starts a new conversation.`

// ParseProfile reads "key: value" lines on top of the form defaults. Values
// are matched to the known options ignoring case; anything else is kept as
// typed so validation can report it.
func ParseProfile(text string) (diet.Profile, error) {
	p := diet.DefaultProfile()

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rawKey, value, ok := strings.Cut(line, ":")
		if !ok {
			return p, fmt.Errorf("line %d: expected \"key: value\", got %q", n+1, line)
		}
		key, known := profileKeys[normalizeKey(rawKey)]
		if !known {
			return p, fmt.Errorf("line %d: unknown field %q", n+1, strings.TrimSpace(rawKey))
		}
		value = strings.TrimSpace(value)

		switch key {
		case "age":
			p.AgeRange = match(diet.AgeRanges, value)
		case "weight":
			v, err := strconv.Atoi(value)
			if err != nil {
				return p, fmt.Errorf("line %d: weight must be a whole number", n+1)
			}
			p.BodyWeightKg = v
		case "height":
			v, err := strconv.Atoi(value)
			if err != nil {
				return p, fmt.Errorf("line %d: height must be a whole number", n+1)
			}
			p.HeightCm = v
		case "severity":
			p.AutismSeverity = match(diet.Severities, value)
		case "diet":
			if dt, ok := diet.ParseDietType(value); ok {
				p.DietType = dt
			} else {
				p.DietType = diet.DietType(value)
			}
		case "preferences":
			p.Preferences = nil
			for _, item := range splitList(value) {
				p.Preferences = append(p.Preferences, match(diet.Preferences, item))
			}
		case "allergies":
			var tags []string
			for _, item := range splitList(value) {
				tags = append(tags, string(match(diet.Allergens, item)))
			}
			p.Allergies = diet.NewAllergySet(tags...)
		case "goal":
			p.Goal = match(diet.Goals, value)
		case "activity":
			p.ActivityLevel = match(diet.ActivityLevels, value)
		case "hydration":
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return p, fmt.Errorf("line %d: hydration must be a number", n+1)
			}
			p.HydrationLiters = v
		case "gfcf":
			v, err := parseYesNo(value)
			if err != nil {
				return p, fmt.Errorf("line %d: %w", n+1, err)
			}
			p.IsGFCF = v
		}
	}
	return p, nil
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "_", " ")
	return strings.Join(strings.Fields(k), " ")
}

func match[T ~string](options []T, value string) T {
	for _, o := range options {
		if strings.EqualFold(string(o), value) {
			return o
		}
	}
	return T(value)
}

func splitList(value string) []string {
	if strings.EqualFold(value, "none") {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseYesNo(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1", "on":
		return true, nil
	case "no", "n", "false", "0", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("gfcf must be yes or no, got %q", v)
}
