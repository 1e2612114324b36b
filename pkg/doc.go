// Package pkg provides the core libraries for masonry staggered layouts.
//
// # Overview
//
// Masonry places variable-height tiles in columns, each tile going to the
// column with the least accumulated height. Layout is incremental: only the
// tiles near the viewport are measured and materialized, and geometry is
// cached across passes until a change invalidates it. The pkg directory is
// organized into four areas:
//
//  1. [core/stagger] - The layout algorithm against an injected host
//  2. [virtual] - An in-memory host with a tile source, element pool and viewport
//  3. [pipeline] - Orchestration (load → layout → render) with caching
//  4. [session] - Long-lived hosts for incremental server-side scrolling
//
// # Architecture
//
// The typical data flow through masonry:
//
//	Board file or URL
//	         ↓
//	    [board] / [fetch] packages (decode tiles and settings)
//	         ↓
//	    [virtual] host driving [core/stagger] (measure + arrange)
//	         ↓
//	    [board.Layout] (placements)
//	         ↓
//	    [render/sink] package → SVG/PDF/PNG/JSON output
//
// # Quick Start
//
// Lay out a board and render it as SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/masonry/pkg/board"
//	    "github.com/matzehuels/masonry/pkg/pipeline"
//	    "github.com/matzehuels/masonry/pkg/render/sink"
//	)
//
//	b, _ := board.ReadBoardFile("board.json")
//	l, _ := pipeline.GenerateLayout(ctx, b, board.Settings{DesiredColumnWidth: 240, Width: 1000}, nil)
//	svg := sink.RenderSVG(l, sink.Options{Labels: true})
//
// Scroll a virtualized host by hand:
//
//	h := virtual.New(b.Tiles, virtual.WithViewport(virtual.Viewport{Width: 1000, Height: 800}))
//	defer h.Close()
//	res := h.Pass(ctx)      // measures only what the viewport needs
//	h.ScrollBy(800)
//	res = h.Pass(ctx)       // reuses cached geometry, recycles off-screen elements
//
// # Main Packages
//
// [core/stagger] - Item records, column assignment, layout state with suffix
// invalidation, and the measure and arrange passes. Pure and synchronous.
//
// [virtual] - Host implementation used by the CLI, the server and tests.
// Mutations (insert, remove, replace, move, reset) are reported to the
// layout as collection changes.
//
// [board] - Tiles, layout settings and placements with JSON and TOML codecs.
//
// [render/sink] - Renderers for SVG, JSON, PNG (Graphviz) and PDF.
//
// [cache] - Cache interface with file, Redis, MongoDB and null backends.
//
// [pipeline] - Load, layout and render with per-stage caching, used by the
// CLI and the HTTP server so both behave the same.
//
// [errors] - Structured error codes shared by every package.
//
// [core/stagger]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/core/stagger
// [virtual]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/virtual
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/session
// [board]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/board
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/render/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/masonry/pkg/errors
package pkg
