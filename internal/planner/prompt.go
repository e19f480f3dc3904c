package planner

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	"autism-diet-planner/internal/diet"
)

//go:embed diet_prompt.md
var dietPrompt string

var dietPromptTmpl = template.Must(template.New("diet").Parse(dietPrompt))

type dietPromptData struct {
	AgeRange       diet.AgeRange
	BodyWeightKg   int
	HeightCm       int
	AutismSeverity diet.Severity
	DietType       diet.DietType
	Preferences    string
	Allergies      string
	Goal           diet.Goal
	ActivityLevel  diet.ActivityLevel
	Hydration      string
	IsGFCF         bool
}

// BuildPrompt renders the request sent to the text-generation service. Every
// profile field is included; none of them changes the fallback plan beyond
// DietType and Allergies.
func BuildPrompt(p diet.Profile) (string, error) {
	data := dietPromptData{
		AgeRange:       p.AgeRange,
		BodyWeightKg:   p.BodyWeightKg,
		HeightCm:       p.HeightCm,
		AutismSeverity: p.AutismSeverity,
		DietType:       p.DietType,
		Preferences:    strings.Join(p.PreferenceStrings(), ", "),
		Allergies:      strings.Join(p.Allergies.Strings(), ", "),
		Goal:           p.Goal,
		ActivityLevel:  p.ActivityLevel,
		Hydration:      strconv.FormatFloat(p.HydrationLiters, 'f', 1, 64),
		IsGFCF:         p.IsGFCF,
	}

	var buf bytes.Buffer
	if err := dietPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
