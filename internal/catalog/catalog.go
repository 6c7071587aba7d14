// Package catalog loads the style and predefined mood lists, optionally
// overridden from a YAML or JSON file.
package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/PiusEzekiel/Sketch-My-Mood/internal/domain"
)

type Catalog struct {
	Styles []domain.Style `json:"styles" mapstructure:"styles"`
	Moods  []string       `json:"moods" mapstructure:"moods"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Styles: append([]domain.Style(nil), domain.DefaultStyles...),
		Moods:  append([]string(nil), domain.DefaultMoods...),
	}
}

// Load reads path when set. Lists missing from the file keep their defaults.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var raw Catalog
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}

	out := Default()
	if styles := normalizeStyles(raw.Styles); len(styles) > 0 {
		out.Styles = styles
	}
	if moods := normalizeMoods(raw.Moods); len(moods) > 0 {
		out.Moods = moods
	}
	return out, nil
}

func normalizeStyles(in []domain.Style) []domain.Style {
	title := cases.Title(language.English)
	seen := map[string]struct{}{}
	var out []domain.Style
	for _, s := range in {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = title.String(strings.NewReplacer("-", " ", "_", " ").Replace(id))
		}
		out = append(out, domain.Style{ID: id, Name: name, Icon: strings.TrimSpace(s.Icon)})
	}
	return out
}

func normalizeMoods(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, m := range in {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if m == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
