package editor

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

type presetFile struct {
	Presets []Item `yaml:"presets"`
}

// LoadPresets returns the built-in cover catalog.
func LoadPresets() ([]Item, error) {
	return ParsePresets(presetsYAML)
}

// ParsePresets decodes a preset catalog. IDs must be unique and every entry
// needs an ID, label, category and ref.
func ParsePresets(data []byte) ([]Item, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("editor: parse presets: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Presets))
	items := make([]Item, 0, len(file.Presets))
	for i, p := range file.Presets {
		p.ID = strings.TrimSpace(p.ID)
		p.Label = strings.TrimSpace(p.Label)
		p.Category = strings.ToLower(strings.TrimSpace(p.Category))
		p.Ref = strings.TrimSpace(p.Ref)
		if p.ID == "" || p.Label == "" || p.Category == "" || p.Ref == "" {
			return nil, fmt.Errorf("editor: preset %d is incomplete", i)
		}
		if p.Category == CategoryGenerated {
			return nil, fmt.Errorf("editor: preset %q uses reserved category %q", p.ID, CategoryGenerated)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("editor: duplicate preset id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		items = append(items, p)
	}
	return items, nil
}

// TabLabel renders a category for display, e.g. "birthday" -> "Birthday".
func TabLabel(category string) string {
	return cases.Title(language.English).String(strings.TrimSpace(category))
}
