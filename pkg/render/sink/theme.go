package sink

import (
	"fmt"
	"slices"
	"strings"
)

// Theme is a render palette.
type Theme struct {
	Name       string
	Background string
	Text       string
	Stroke     string
	Guide      string
	Fills      []string
}

var themes = []Theme{
	{
		Name:       "light",
		Background: "#ffffff",
		Text:       "#1d1d1f",
		Stroke:     "#d0d0d5",
		Guide:      "#f2f2f5",
		Fills:      []string{"#e8eef7", "#f7ece8", "#eaf5ea", "#f5f0e1", "#efe8f5"},
	},
	{
		Name:       "dark",
		Background: "#16161a",
		Text:       "#f2f2f5",
		Stroke:     "#34343c",
		Guide:      "#1e1e24",
		Fills:      []string{"#2b3445", "#45302b", "#2b4530", "#45402b", "#3a2b45"},
	},
}

// DefaultTheme is used when no theme is requested.
const DefaultTheme = "light"

// Themes returns the theme names.
func Themes() []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.Name
	}
	return out
}

// LookupTheme returns the named theme. An empty name selects [DefaultTheme].
func LookupTheme(name string) (Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	i := slices.IndexFunc(themes, func(t Theme) bool { return strings.EqualFold(t.Name, name) })
	if i < 0 {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(Themes(), ", "))
	}
	return themes[i], nil
}

func (t Theme) fill(index int, color string) string {
	if color != "" {
		return color
	}
	return t.Fills[index%len(t.Fills)]
}
