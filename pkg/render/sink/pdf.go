package sink

import (
	"context"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/render"
)

// RenderPDF renders the layout as SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, l board.Layout, opts Options) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(l, opts))
}
