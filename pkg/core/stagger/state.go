package stagger

import (
	"fmt"
	"slices"
)

// Geometry is the column arrangement used by the most recent measure pass.
type Geometry struct {
	ColumnWidth   float64
	ColumnCount   int
	ColumnSpacing float64
	RowSpacing    float64
}

// ColumnOffset returns the horizontal offset of column c.
func (g Geometry) ColumnOffset(c int) float64 {
	return float64(c) * (g.ColumnWidth + g.ColumnSpacing)
}

// Placement is the resolved position of one placed item.
type Placement struct {
	Index  int
	Column int
	Bounds Rect
}

// State is the layout cache persisted between passes in the host's
// layout-state slot. It owns an index-keyed arena of [Item] records and the
// column table built from them.
type State struct {
	ctx      Context
	items    []*Item
	columns  []*Column
	realized map[int]*Item
	geometry Geometry
	stats    *PassStats
	logf     func(format string, args ...any)
}

func newState(ctx Context, logf func(string, ...any)) *State {
	return &State{
		ctx:      ctx,
		realized: make(map[int]*Item),
		stats:    &PassStats{},
		logf:     logf,
	}
}

// Len returns the number of item records currently cached.
func (s *State) Len() int { return len(s.items) }

// ItemAt returns the record for index i, or nil if none is cached.
func (s *State) ItemAt(i int) *Item {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// GetItemAt returns the record for index i, creating unmeasured records as needed.
func (s *State) GetItemAt(i int) *Item {
	if i < 0 {
		panic(fmt.Sprintf("stagger: negative item index %d", i))
	}
	for len(s.items) <= i {
		s.items = append(s.items, newItem(len(s.items)))
	}
	return s.items[i]
}

// ColumnCount returns the number of columns in the table.
func (s *State) ColumnCount() int { return len(s.columns) }

// Column returns column c of the table.
func (s *State) Column(c int) *Column { return s.columns[c] }

// Columns returns the column table. The slice is a copy; the columns are not.
func (s *State) Columns() []*Column { return slices.Clone(s.columns) }

// Stats returns the counters of the most recent pass.
func (s *State) Stats() PassStats { return *s.stats }

// Geometry returns the geometry of the most recent measure pass.
func (s *State) Geometry() Geometry { return s.geometry }

// Realized returns the number of records currently holding an element.
func (s *State) Realized() int { return len(s.realized) }

// Height returns the content height: the tallest column extent, or 0.
func (s *State) Height() float64 {
	var h float64
	for _, c := range s.columns {
		h = max(h, c.height)
	}
	return h
}

// AddItemToColumn appends it to column c and updates the column height.
// Adding an item already at the tail of c only refreshes the height.
func (s *State) AddItemToColumn(it *Item, c int) {
	s.ensureColumns(c + 1)
	col := s.columns[c]
	switch it.column {
	case c:
		col.refit(it)
		return
	case -1:
	default:
		panic(fmt.Sprintf("stagger: item %d already assigned to column %d", it.Index, it.column))
	}
	it.column = c
	col.add(it)
}

// RemoveFromIndex drops every record with index >= i and truncates the
// column table to match. Elements held by dropped records go back to the host.
func (s *State) RemoveFromIndex(i int) {
	if i < 0 {
		panic(fmt.Sprintf("stagger: negative invalidation index %d", i))
	}
	if i >= len(s.items) {
		return
	}
	for idx, it := range s.realized {
		if idx >= i {
			s.release(it)
		}
	}
	for _, c := range s.columns {
		c.truncateFrom(i)
	}
	dropped := len(s.items) - i
	clear(s.items[i:])
	s.items = s.items[:i]
	s.debugf("truncated cache from index %d (%d records dropped)", i, dropped)
}

// RemoveRange invalidates a mutation spanning [lo, hi]. Everything after the
// smaller index is no longer trustworthy.
func (s *State) RemoveRange(lo, hi int) {
	s.RemoveFromIndex(min(lo, hi))
}

// RecycleElementAt releases the element held for index i, if any, keeping
// the cached height and top.
func (s *State) RecycleElementAt(i int) {
	if it := s.ItemAt(i); it != nil {
		s.release(it)
	}
}

// Clear drops every record and empties the column table.
func (s *State) Clear() {
	for _, it := range s.realized {
		s.release(it)
	}
	for _, c := range s.columns {
		c.reset()
	}
	dropped := len(s.items)
	clear(s.items)
	s.items = s.items[:0]
	s.debugf("cleared cache (%d records dropped)", dropped)
}

// ClearColumns drops the column table but keeps measured heights.
func (s *State) ClearColumns() {
	for _, c := range s.columns {
		c.reset()
	}
	s.columns = s.columns[:0]
	s.debugf("cleared column table")
}

// Placements returns the bounds of every item in the column table, ordered by index.
func (s *State) Placements() []Placement {
	var out []Placement
	for c, col := range s.columns {
		x := s.geometry.ColumnOffset(c)
		for _, it := range col.items {
			out = append(out, Placement{
				Index:  it.Index,
				Column: c,
				Bounds: Rect{X: x, Y: it.Top, Width: s.geometry.ColumnWidth, Height: it.Height},
			})
		}
	}
	slices.SortFunc(out, func(a, b Placement) int { return a.Index - b.Index })
	return out
}

func (s *State) ensureColumns(n int) {
	for len(s.columns) < n {
		s.columns = append(s.columns, &Column{})
	}
}

// acquire materializes the element for it and tracks it as realized.
func (s *State) acquire(it *Item) Element {
	el := s.ctx.GetOrCreateElementAt(it.Index)
	if it.Element == nil {
		s.stats.Realized++
	}
	it.Element = el
	s.realized[it.Index] = it
	return el
}

// release hands the element held by it back to the host.
func (s *State) release(it *Item) {
	if it.Element == nil {
		return
	}
	s.ctx.RecycleElement(it.Element)
	it.Element = nil
	delete(s.realized, it.Index)
	s.stats.Recycled++
}

// releaseAfter recycles realized records past index i. A pass that stops
// early never visits them, so they would otherwise keep stale elements.
func (s *State) releaseAfter(i int) {
	for idx, it := range s.realized {
		if idx > i {
			s.release(it)
		}
	}
}

func (s *State) releaseAll() {
	for _, it := range s.realized {
		s.release(it)
	}
}

func (s *State) debugf(format string, args ...any) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}
