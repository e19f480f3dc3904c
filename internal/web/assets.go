package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// ErrAssetMissing means no background image was found; the page falls back to
// a plain style and shows a warning.
var ErrAssetMissing = errors.New("background image not found")

// backgroundCandidates are tried in order.
var backgroundCandidates = []struct {
	name string
	mime string
}{
	{"bg.png", "image/png"},
	{"bg.jpg", "image/jpeg"},
	{"bg.jpeg", "image/jpeg"},
	{"bg.webp", "image/webp"},
}

// LoadBackground reads the first background image in dir and returns it as a
// CSS declaration with the image inlined.
func LoadBackground(dir string) (template.CSS, error) {
	for _, c := range backgroundCandidates {
		data, err := os.ReadFile(filepath.Join(dir, c.name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", c.name, err)
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		return template.CSS(fmt.Sprintf(`background-image: url("data:%s;base64,%s"); background-size: cover;`, c.mime, encoded)), nil
	}
	return "", ErrAssetMissing
}
