package stagger

import (
	"fmt"
	"math"
)

// PassStats counts the work done by one measure pass.
type PassStats struct {
	Items       int     `json:"items"`               // item count reported by the host
	Visited     int     `json:"visited"`             // records placed before the loop ended
	Measured    int     `json:"measured"`            // host Measure calls
	Realized    int     `json:"realized"`            // elements acquired
	Recycled    int     `json:"recycled"`            // elements returned to the host
	SizeChanges int     `json:"size_changes"`        // items whose height changed since the previous pass
	StoppedAt   int     `json:"stopped_at"`          // index at which every column went dead, or -1
	Columns     int     `json:"columns"`             // derived column count
	ColumnWidth float64 `json:"column_width"`        // derived column width
	Height      float64 `json:"height"`              // content height
	Cleared     bool    `json:"cleared,omitempty"`   // the whole cache was dropped for a new column width
	Regrouped   bool    `json:"regrouped,omitempty"` // column membership was dropped for a new count or row spacing
}

// Measure runs the placement pass and returns the desired size: the
// available width (or the occupied width when unbounded) and the content
// height.
func (l *Layout) Measure(ctx Context, available Size) Size {
	st := l.StateOf(ctx)
	count := ctx.ItemCount()
	if count < 0 {
		panic(fmt.Sprintf("stagger: negative item count %d", count))
	}
	*st.stats = PassStats{Items: count, StoppedAt: -1}
	stats := st.stats

	// Records past the end belong to items the host dropped without a change
	// notification.
	if st.Len() > count {
		st.RemoveFromIndex(count)
	}

	region := ctx.RealizationRect()
	if count == 0 || region.IsEmpty() {
		return Size{Width: available.Width, Height: 0}
	}

	width, n, desiredWidth := columnGeometry(available.Width, l.opts)
	l.reconcile(st, width, n)
	st.ensureColumns(n)
	stats.Columns, stats.ColumnWidth = n, width

	var (
		heights   = make([]float64, n)
		counts    = make([]int, n)
		dead      = make([]bool, n)
		deadCount int
		spacing   = l.opts.RowSpacing
		measureAt = Size{Width: width, Height: available.Height}
	)

	for i := 0; i < count; i++ {
		stats.Visited++
		c := shortestColumn(heights)
		it := st.GetItemAt(i)

		fresh := false
		if it.Height == 0 {
			placed := it.column == c
			h := l.measureItem(st, it, measureAt)
			fresh = true
			if placed && h != 0 {
				// A zero-height item that gained height moves everything after it.
				st.RemoveFromIndex(i + 1)
				stats.SizeChanges++
			}
			it.Height = h
		}

		it.Top = heights[c]
		if counts[c] > 0 {
			it.Top += spacing
		}
		heights[c] = it.Bottom()
		counts[c]++
		st.AddItemToColumn(it, c)

		switch {
		case it.Bottom() < region.Top():
			st.release(it)
		case it.Top > region.Bottom():
			st.release(it)
			if !dead[c] {
				dead[c] = true
				deadCount++
			}
		case !fresh && it.Element == nil:
			h := l.measureItem(st, it, measureAt)
			if !nearlyEqual(h, it.Height) {
				st.debugf("item %d changed size %.2f -> %.2f, dropping records after it", i, it.Height, h)
				st.RemoveFromIndex(i + 1)
				it.Height = h
				heights[c] = it.Bottom()
				st.columns[c].refit(it)
				stats.SizeChanges++
			}
		}

		if deadCount == n {
			st.releaseAfter(i)
			stats.StoppedAt = i
			break
		}
	}

	stats.Height = st.Height()
	return Size{Width: desiredWidth, Height: stats.Height}
}

// reconcile drops cached state that the new geometry makes stale and
// records the geometry for the next pass.
func (l *Layout) reconcile(st *State, width float64, n int) {
	prev := st.geometry
	if prev.ColumnCount > 0 {
		if !nearlyEqual(width, prev.ColumnWidth) {
			st.Clear()
			st.stats.Cleared = true
		}
		if n != prev.ColumnCount || !nearlyEqual(l.opts.RowSpacing, prev.RowSpacing) {
			st.ClearColumns()
			st.stats.Regrouped = true
		}
	}
	st.geometry = Geometry{
		ColumnWidth:   width,
		ColumnCount:   n,
		ColumnSpacing: l.opts.ColumnSpacing,
		RowSpacing:    l.opts.RowSpacing,
	}
}

// measureItem materializes it if needed and returns its measured height.
func (l *Layout) measureItem(st *State, it *Item, available Size) float64 {
	el := it.Element
	if el == nil {
		el = st.acquire(it)
	}
	st.stats.Measured++
	h := st.ctx.Measure(el, available).Height
	if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		panic(fmt.Sprintf("stagger: item %d measured to invalid height %v", it.Index, h))
	}
	return h
}

// shortestColumn returns the column with the least accumulated height. Only
// a strictly smaller height replaces the incumbent, so ties go to the lowest
// index.
func shortestColumn(heights []float64) int {
	best := 0
	for c := 1; c < len(heights); c++ {
		if heights[c] < heights[best] {
			best = c
		}
	}
	return best
}
