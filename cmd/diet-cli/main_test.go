package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSample_CSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plan.csv")

	require.NoError(t, runSample("Vegetarian", "Gluten", "csv", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Meal,Monday,"))
	assert.NotContains(t, string(data), "Paratha with curd")
}

func TestRunSample_RejectsBeforeCreatingFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		diet   string
		format string
		out    string
		want   string
	}{
		{"UnknownFormat", "Vegetarian", "pdf", filepath.Join(dir, "plan.pdf"), "unknown format"},
		{"UnknownDiet", "Carnivore", "csv", filepath.Join(dir, "plan.csv"), "unknown diet type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runSample(tt.diet, "", tt.format, tt.out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NoFileExists(t, tt.out)
		})
	}

	err := runSample("Vegetarian", "", "xlsx", "")
	assert.ErrorContains(t, err, "xlsx output needs -out")
}
