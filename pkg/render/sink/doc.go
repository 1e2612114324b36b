// Package sink renders computed board layouts.
//
// # Overview
//
// A "sink" transforms a [board.Layout] into a final output format:
//
//   - SVG: tiles as rounded rectangles with optional labels and column guides
//   - JSON: the layout itself, for external tools and round-tripping
//   - PNG: raster output through Graphviz with every tile pinned in place
//   - PDF: the SVG converted by rsvg-convert
//
// [Render] dispatches on a format name; the per-format functions can be
// called directly.
//
//	svg := sink.RenderSVG(l, sink.Options{Theme: "dark", Labels: true})
//	png, err := sink.RenderPNG(ctx, l, sink.Options{Scale: 2})
//
// # Themes
//
// [Themes] lists the palettes. A tile with its own color keeps it; tiles
// without one cycle through the theme's fills by index.
package sink
