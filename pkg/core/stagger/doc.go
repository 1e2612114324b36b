// Package stagger implements a virtualizing staggered (masonry) layout.
//
// # Overview
//
// Items of varying height are placed into a fixed number of equal-width
// columns. Each item goes into whichever column currently has the least
// accumulated height, scanning left to right, so ties keep the lowest column
// index. Only items that intersect the host's realization region (the visible
// viewport plus a buffer) are materialized; everything else is represented by
// cached geometry alone.
//
// # Host Contract
//
// The package never creates or owns visual elements. A [Context] supplied by
// the host materializes elements ([Context.GetOrCreateElementAt]), takes them
// back ([Context.RecycleElement]), measures and positions them. Handles are
// borrowed: every handle the layout acquires is returned to the host before
// the owning [Item] record is discarded.
//
// The host drives a pass by calling [Layout.Measure] and then
// [Layout.Arrange]. Collection mutations are reported with
// [Layout.ItemsChanged] so only the affected suffix of the cache is dropped:
//
//	l := stagger.New(stagger.WithDesiredColumnWidth(240), stagger.WithRowSpacing(8))
//	l.Initialize(host)
//	desired := l.Measure(host, stagger.Size{Width: 1000, Height: math.Inf(1)})
//	l.Arrange(host, desired)
//
//	// later, after inserting an item at index 12
//	l.ItemsChanged(host, stagger.InsertAt(12, 1))
//
// # Cached State
//
// [State] persists between passes in the host's layout-state slot. It keeps
// an index-keyed arena of [Item] records and the column table built from
// them. Column width or count changes and row spacing changes are reconciled
// inside [Layout.Measure]:
//
//   - column width changed: every record is dropped (all heights depend on width)
//   - column count or row spacing changed: column membership is dropped, measured
//     heights are kept
//
// # Concurrency
//
// A Layout and its State are not safe for concurrent use. Hosts must call
// Measure, Arrange and ItemsChanged from a single goroutine, with Measure
// preceding Arrange for each pass.
package stagger
