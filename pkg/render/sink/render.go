package sink

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/masonry/pkg/board"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists every format [Render] accepts.
var Formats = []string{FormatSVG, FormatJSON, FormatPNG, FormatPDF}

// Margin surrounds the content in image formats.
const Margin = 16.0

// DefaultScale is the PNG resolution factor when none is set.
const DefaultScale = 2.0

// Options configures rendering. The zero value renders the light theme
// without labels or guides.
type Options struct {
	Theme  string  // palette name, see [Themes]
	Labels bool    // draw tile titles
	Guides bool    // shade the column backgrounds
	Scale  float64 // PNG resolution factor
}

// ValidFormat reports whether f is a known format.
func ValidFormat(f string) bool { return slices.Contains(Formats, f) }

// Render renders l in the given format.
func Render(ctx context.Context, l board.Layout, format string, opts Options) ([]byte, error) {
	if _, err := LookupTheme(opts.Theme); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case FormatSVG:
		return RenderSVG(l, opts), nil
	case FormatJSON:
		return RenderJSON(l)
	case FormatPNG:
		return RenderPNG(ctx, l, opts)
	case FormatPDF:
		return RenderPDF(ctx, l, opts)
	default:
		return nil, fmt.Errorf("unknown format %q (want %s)", format, strings.Join(Formats, ", "))
	}
}

// contentWidth returns the horizontal extent of the columns, falling back to
// the column geometry when the layout width is unset or unbounded.
func contentWidth(l board.Layout) float64 {
	occupied := 0.0
	if l.Columns > 0 {
		occupied = float64(l.Columns)*l.ColumnWidth + float64(l.Columns-1)*l.ColumnSpacing
	}
	if l.Width <= 0 || l.Width > 1e9 {
		return occupied
	}
	return max(l.Width, occupied)
}
