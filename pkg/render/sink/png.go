package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/masonry/pkg/board"
)

// pointsPerInch is Graphviz's unit conversion for node sizes.
const pointsPerInch = 72.0

// ToDOT converts a layout into a Graphviz graph whose nodes are pinned at
// the tile positions. Graphviz puts the origin at the bottom-left and pos
// at the node center, so Y is flipped. Two invisible corner points fix the
// canvas to the full content area.
func ToDOT(l board.Layout, opts Options) string {
	theme, err := LookupTheme(opts.Theme)
	if err != nil {
		theme = themes[0]
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	w := contentWidth(l) + 2*Margin
	h := l.Height + 2*Margin

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, inputscale=72, pad=0, margin=0, splines=false, overlap=true, outputorder=nodesfirst, dpi=%.0f];\n",
		theme.Background, pointsPerInch*scale)
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fixedsize=true, penwidth=1, color=%q, fontcolor=%q, fontname=\"Helvetica\"];\n",
		theme.Stroke, theme.Text)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  \"_origin\" [shape=point, style=invis, width=0, height=0, pos=\"0,0!\"];\n")
	fmt.Fprintf(&buf, "  \"_corner\" [shape=point, style=invis, width=0, height=0, pos=\"%.2f,%.2f!\"];\n", w, h)

	for _, p := range l.Placements {
		cx := Margin + p.X + p.Width/2
		cy := h - (Margin + p.Y + p.Height/2)
		label := ""
		fontsize := fontSizeMin
		if opts.Labels {
			label = p.Label()
			fontsize = fontSize(p.Width, p.Height, len([]rune(label)))
			label = truncateLabel(label, p.Width, fontsize)
		}
		fmt.Fprintf(&buf, "  %q [pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f, fillcolor=%q, label=%q, fontsize=%.1f];\n",
			"tile-"+p.ID, cx, cy, p.Width/pointsPerInch, p.Height/pointsPerInch,
			theme.fill(p.Index, p.Color), label, fontsize)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderPNG rasterizes the layout with Graphviz's neato engine, which keeps
// pinned node positions as given.
func RenderPNG(ctx context.Context, l board.Layout, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(l, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
