package domain

import "strings"

// Style is a named artistic rendering style.
type Style struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	Icon string `json:"icon,omitempty" mapstructure:"icon"`
}

// DefaultStyleName is used when a style id cannot be resolved.
const DefaultStyleName = "Abstract"

// DefaultStyles is the built-in style catalog.
var DefaultStyles = []Style{
	{ID: "abstract", Name: "Abstract", Icon: "🎨"},
	{ID: "cyberpunk", Name: "Cyberpunk", Icon: "🌆"},
	{ID: "watercolor", Name: "Watercolor", Icon: "💧"},
	{ID: "renaissance", Name: "Renaissance", Icon: "🏛️"},
	{ID: "sketch", Name: "Charcoal", Icon: "✏️"},
	{ID: "surreal", Name: "Surrealism", Icon: "👁️"},
}

// DefaultMoods lists the predefined mood labels.
var DefaultMoods = []string{
	"Calm",
	"Energized",
	"Melancholic",
	"Dreamy",
	"Anxious",
	"Joyful",
	"Mysterious",
	"Lonely",
}

// ResolveStyleName maps a style id to its display name, falling back to
// DefaultStyleName.
func ResolveStyleName(styles []Style, id string) string {
	id = strings.TrimSpace(id)
	for _, s := range styles {
		if strings.EqualFold(s.ID, id) && s.Name != "" {
			return s.Name
		}
	}
	return DefaultStyleName
}
