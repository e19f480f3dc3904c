package app

import (
	"errors"
	"fmt"
	"time"

	"autism-diet-planner/internal/diet"
	"autism-diet-planner/internal/planner"
)

var (
	ErrResultNotFound      = errors.New("result not found or expired")
	ErrArtifactUnavailable = errors.New("artifact not available for this result")
)

// Kind tells whether a result came from the service or from the fallback builder.
type Kind string

const (
	KindGenerated Kind = "generated"
	KindFallback  Kind = "fallback"
)

// Artifact names a downloadable rendering of a result.
type Artifact string

const (
	ArtifactText Artifact = "txt"
	ArtifactCSV  Artifact = "csv"
	ArtifactXLSX Artifact = "xlsx"
)

// File names and content types offered for download.
const (
	TextFilename = "diet_plan.txt"
	CSVFilename  = "sample_diet_plan.csv"
	XLSXFilename = "sample_diet_plan.xlsx"

	TextContentType = "text/plain; charset=utf-8"
	CSVContentType  = "text/csv"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Result is the outcome of one Generate call.
type Result struct {
	ID        string
	Kind      Kind
	Text      string
	Plan      planner.WeeklyPlan
	Notice    string
	Profile   diet.Profile
	CreatedAt time.Time
}

// Download is a rendered artifact ready to be sent.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Artifacts lists what can be downloaded for the result.
func (r *Result) Artifacts() []Artifact {
	if r.Kind == KindGenerated {
		return []Artifact{ArtifactText}
	}
	return []Artifact{ArtifactCSV, ArtifactXLSX}
}

// Render produces the requested artifact.
func (r *Result) Render(kind Artifact) (*Download, error) {
	switch {
	case kind == ArtifactText && r.Kind == KindGenerated:
		return &Download{Filename: TextFilename, ContentType: TextContentType, Data: []byte(r.Text)}, nil
	case kind == ArtifactCSV && r.Kind == KindFallback:
		data, err := planner.CSV(r.Plan)
		if err != nil {
			return nil, fmt.Errorf("failed to render csv: %w", err)
		}
		return &Download{Filename: CSVFilename, ContentType: CSVContentType, Data: data}, nil
	case kind == ArtifactXLSX && r.Kind == KindFallback:
		data, err := planner.XLSX(r.Plan)
		if err != nil {
			return nil, fmt.Errorf("failed to render xlsx: %w", err)
		}
		return &Download{Filename: XLSXFilename, ContentType: XLSXContentType, Data: data}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrArtifactUnavailable, kind)
}

// ParseArtifact maps a file extension to an Artifact.
func ParseArtifact(s string) (Artifact, bool) {
	switch Artifact(s) {
	case ArtifactText, ArtifactCSV, ArtifactXLSX:
		return Artifact(s), true
	}
	return "", false
}
