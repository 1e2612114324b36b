// Package render converts rendered SVG into formats that need an external
// tool. The layout renderers live in [github.com/matzehuels/masonry/pkg/render/sink].
//
// [ToPDF] pipes SVG through rsvg-convert (librsvg):
//
//	svg := sink.RenderSVG(layout, sink.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
package render
