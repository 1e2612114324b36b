package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/masonry/pkg/board"
)

const tileCSS = `
    .tile rect { transition: stroke-width 0.2s ease; }
    .tile:hover rect { stroke-width: 3; }
    .caption { font-size: 11px; }
    a { cursor: pointer; }`

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l board.Layout, opts Options) []byte {
	theme, err := LookupTheme(opts.Theme)
	if err != nil {
		theme = themes[0]
	}
	w := contentWidth(l) + 2*Margin
	h := l.Height + 2*Margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Helvetica, Arial, sans-serif">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", theme.Background)
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f %.1f)">`+"\n", Margin, Margin)

	if opts.Guides {
		renderGuides(&buf, l, theme)
	}
	for _, p := range l.Placements {
		renderTile(&buf, p, theme, opts.Labels)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderGuides(buf *bytes.Buffer, l board.Layout, theme Theme) {
	for c := 0; c < l.Columns; c++ {
		x := float64(c) * (l.ColumnWidth + l.ColumnSpacing)
		fmt.Fprintf(buf, `    <rect class="guide" x="%.1f" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			x, l.ColumnWidth, l.Height, theme.Guide)
	}
}

func renderTile(buf *bytes.Buffer, p board.Placement, theme Theme, labels bool) {
	wrapURL(buf, p.URL, func() {
		fmt.Fprintf(buf, `    <g class="tile" id="tile-%s">`+"\n", escapeXML(p.ID))
		fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			p.X, p.Y, p.Width, p.Height, theme.fill(p.Index, p.Color), theme.Stroke)

		body := p.Height
		if p.Caption != "" {
			body -= board.CaptionHeight
			fmt.Fprintf(buf, `      <text class="caption" x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
				p.X+8, p.Y+body+board.CaptionHeight*0.65, theme.Text,
				escapeXML(truncateLabel(p.Caption, p.Width-16, 11)))
		}
		if labels && body > fontSizeMin {
			label := p.Label()
			size := fontSize(p.Width, body, len([]rune(label)))
			fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
				p.X+p.Width/2, p.Y+body/2, size, theme.Text, escapeXML(truncateLabel(label, p.Width, size)))
		}
		buf.WriteString("    </g>\n")
	})
}
