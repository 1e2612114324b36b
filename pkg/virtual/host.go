package virtual

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/core/stagger"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
)

// MeasureFunc returns the desired size of a tile laid out against available.
type MeasureFunc func(t board.Tile, available stagger.Size) stagger.Size

// MeasureTile sizes a tile with [board.Tile.HeightAt] at the column width.
func MeasureTile(t board.Tile, available stagger.Size) stagger.Size {
	return stagger.Size{Width: available.Width, Height: t.HeightAt(available.Width)}
}

// Option configures a [Host].
type Option func(*Host)

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) Option { return func(h *Host) { h.viewport = v } }

// WithCacheLength sets the realization buffer in viewport heights.
func WithCacheLength(n float64) Option { return func(h *Host) { h.cacheLength = n } }

// WithMeasureFunc replaces [MeasureTile].
func WithMeasureFunc(fn MeasureFunc) Option { return func(h *Host) { h.measure = fn } }

// WithLayoutOptions configures the staggered layout.
func WithLayoutOptions(o stagger.Options) Option { return func(h *Host) { h.opts = o } }

// WithLogger routes host and layout debug output to logger.
func WithLogger(logger *log.Logger) Option { return func(h *Host) { h.logger = logger } }

// Host is an in-memory virtualizing host. It owns the tile collection, an
// element pool and a viewport, and drives a [stagger.Layout] over them.
//
// A Host is not safe for concurrent use; callers serialize access the way a
// UI thread would.
type Host struct {
	tiles       []board.Tile
	layout      *stagger.Layout
	state       any
	pool        *pool
	viewport    Viewport
	cacheLength float64
	measure     MeasureFunc
	opts        stagger.Options
	logger      *log.Logger

	pending  []stagger.Reason
	arranged []Arranged
	measured int
	desired  stagger.Size
	passes   int
}

// Arranged is one element positioned by the last pass.
type Arranged struct {
	Index  int          `json:"index"`
	ID     string       `json:"id"`
	Bounds stagger.Rect `json:"bounds"`
}

// PassResult describes one measure + arrange pass.
type PassResult struct {
	Desired  stagger.Size
	Arranged []Arranged
	Stats    stagger.PassStats
	Geometry stagger.Geometry
	Pool     PoolStats
	Reasons  []stagger.Reason
	Duration time.Duration
}

// New returns a host over a copy of tiles. It panics if the layout options
// are invalid; validate user input with [stagger.Options.Validate] first.
func New(tiles []board.Tile, opts ...Option) *Host {
	h := &Host{
		tiles:       slices.Clone(tiles),
		pool:        newPool(),
		cacheLength: DefaultCacheLength,
		measure:     MeasureTile,
		opts:        stagger.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(h)
	}
	layoutOpts := []stagger.Option{stagger.WithOptions(h.opts)}
	if h.logger != nil {
		layoutOpts = append(layoutOpts, stagger.WithLogf(h.logger.Debugf))
	}
	h.layout = stagger.New(layoutOpts...)
	h.layout.OnMeasureInvalidated(h.invalidated)
	h.layout.Initialize(h)
	return h
}

// =============================================================================
// stagger.Context
// =============================================================================

// The methods below implement [stagger.Context]. Only the layout calls them.

// ItemCount returns the number of tiles in the source.
func (h *Host) ItemCount() int { return len(h.tiles) }

// LayoutState returns the state the layout stored on this host.
func (h *Host) LayoutState() any { return h.state }

// SetLayoutState stores the layout's per-host state.
func (h *Host) SetLayoutState(s any) { h.state = s }

// RealizationRect returns the viewport extended by the cache length in
// viewport heights.
func (h *Host) RealizationRect() stagger.Rect {
	return realization(h.viewport, h.cacheLength)
}

// GetOrCreateElementAt binds a pooled element to the tile at index.
func (h *Host) GetOrCreateElementAt(index int) stagger.Element {
	return h.pool.bind(index, h.tiles[index])
}

// RecycleElement returns el to the pool.
func (h *Host) RecycleElement(el stagger.Element) {
	h.pool.recycle(el.(*Element))
}

// Measure sizes the element's tile with the host's measure function.
func (h *Host) Measure(el stagger.Element, available stagger.Size) stagger.Size {
	h.measured++
	return h.measure(el.(*Element).Tile, available)
}

// Arrange records the final bounds of el for the current pass.
func (h *Host) Arrange(el stagger.Element, bounds stagger.Rect) {
	e := el.(*Element)
	e.Bounds = bounds
	h.arranged = append(h.arranged, Arranged{Index: e.Index, ID: e.Tile.ID, Bounds: bounds})
}

// =============================================================================
// Passes
// =============================================================================

// Pass measures and arranges against the current viewport.
func (h *Host) Pass(ctx context.Context) PassResult {
	start := time.Now()
	h.arranged = h.arranged[:0]
	h.measured = 0

	available := stagger.Size{Width: h.viewport.Width, Height: math.Inf(1)}
	h.desired = h.layout.Measure(h, available)
	h.layout.Arrange(h, h.desired)
	h.passes++

	slices.SortFunc(h.arranged, func(a, b Arranged) int { return a.Index - b.Index })
	res := PassResult{
		Desired:  h.desired,
		Arranged: slices.Clone(h.arranged),
		Stats:    h.layout.LastPass(h),
		Geometry: h.layout.Geometry(h),
		Pool:     h.pool.snapshot(),
		Reasons:  h.pending,
		Duration: time.Since(start),
	}
	h.pending = nil

	if h.logger != nil {
		h.logger.Debug("layout pass",
			"items", res.Stats.Items,
			"visited", res.Stats.Visited,
			"measured", res.Stats.Measured,
			"arranged", len(res.Arranged),
			"height", res.Desired.Height)
	}
	observability.Layout().OnPass(ctx, observability.PassInfo{
		Items:       res.Stats.Items,
		Visited:     res.Stats.Visited,
		Measured:    res.Stats.Measured,
		Realized:    res.Stats.Realized,
		Recycled:    res.Stats.Recycled,
		Arranged:    len(res.Arranged),
		SizeChanges: res.Stats.SizeChanges,
		StoppedAt:   res.Stats.StoppedAt,
		Duration:    res.Duration,
	})
	return res
}

// NeedsPass reports whether the layout asked for a measure pass since the
// last one, or no pass ran yet.
func (h *Host) NeedsPass() bool { return h.passes == 0 || len(h.pending) > 0 }

func (h *Host) invalidated(r stagger.Reason) {
	h.pending = append(h.pending, r)
	observability.Layout().OnInvalidate(context.Background(), r.String())
}

// =============================================================================
// Viewport
// =============================================================================

// Viewport returns the current viewport.
func (h *Host) Viewport() Viewport { return h.viewport }

// Scroll moves the viewport top to offset, clamped to the content height of
// the last pass.
func (h *Host) Scroll(offset float64) {
	h.viewport.Offset = clampOffset(offset, h.desired.Height, h.viewport.Height)
}

// ScrollBy moves the viewport by delta.
func (h *Host) ScrollBy(delta float64) { h.Scroll(h.viewport.Offset + delta) }

// Resize changes the viewport size and keeps the scroll offset in range.
func (h *Host) Resize(width, height float64) error {
	if err := errs.ValidateSpacing("viewport width", width); err != nil {
		return err
	}
	if math.IsNaN(height) || height < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "viewport height must be zero or positive, got %v", height)
	}
	h.viewport.Width, h.viewport.Height = width, height
	if !math.IsInf(height, 1) {
		h.viewport.Offset = clampOffset(h.viewport.Offset, h.desired.Height, height)
	}
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

// Options returns the layout configuration.
func (h *Host) Options() stagger.Options { return h.layout.Options() }

// SetOptions validates o and applies it to the layout.
func (h *Host) SetOptions(o stagger.Options) error {
	if err := o.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "layout options")
	}
	h.layout.SetOptions(o)
	return nil
}

// =============================================================================
// Inspection
// =============================================================================

// Len returns the number of tiles.
func (h *Host) Len() int { return len(h.tiles) }

// Tiles returns a copy of the tile collection.
func (h *Host) Tiles() []board.Tile { return slices.Clone(h.tiles) }

// Tile returns the tile at i.
func (h *Host) Tile(i int) board.Tile { return h.tiles[i] }

// State exposes the layout cache for inspection.
func (h *Host) State() *stagger.State { return h.layout.StateOf(h) }

// PoolStats returns the element pool counters.
func (h *Host) PoolStats() PoolStats { return h.pool.snapshot() }

// Element returns the element bound to index i, or nil.
func (h *Host) Element(i int) *Element { return h.pool.live[i] }

// Desired returns the desired size of the last pass.
func (h *Host) Desired() stagger.Size { return h.desired }

// Snapshot exports every placed record as a board layout. Only records the
// last pass visited are included, so call it after a pass whose realization
// region covers the content to get every tile.
func (h *Host) Snapshot(name string) board.Layout {
	st := h.layout.StateOf(h)
	g := st.Geometry()
	out := board.Layout{
		Board:         name,
		Width:         h.desired.Width,
		Height:        h.desired.Height,
		ColumnWidth:   g.ColumnWidth,
		Columns:       g.ColumnCount,
		ColumnSpacing: g.ColumnSpacing,
		RowSpacing:    g.RowSpacing,
		Stretch:       h.layout.Options().Stretch.String(),
	}
	for _, col := range st.Columns() {
		out.ColumnHeights = append(out.ColumnHeights, col.Height())
	}
	for _, p := range st.Placements() {
		t := h.tiles[p.Index]
		out.Placements = append(out.Placements, board.Placement{
			ID:      t.ID,
			Index:   p.Index,
			Column:  p.Column,
			X:       p.Bounds.X,
			Y:       p.Bounds.Y,
			Width:   p.Bounds.Width,
			Height:  p.Bounds.Height,
			Title:   t.Title,
			Caption: t.Caption,
			Color:   t.Color,
			URL:     t.URL,
		})
	}
	return out
}

// Close returns every element to the pool and detaches the layout.
func (h *Host) Close() {
	if h.state != nil {
		h.layout.Uninitialize(h)
	}
}
