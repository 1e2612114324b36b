package stagger

import "math"

// fillEpsilon is subtracted from the fill extent so that n columns of the
// derived width never round past the available width.
const fillEpsilon = 1e-4

// columnGeometry derives the column width and count for the given available
// width. The returned width is the available width the pass reports as
// desired: unchanged when finite, the occupied width when unbounded. An
// unbounded width with no desired column width falls back to
// [DefaultDesiredColumnWidth].
func columnGeometry(available float64, o Options) (width float64, count int, desired float64) {
	desiredSet := !math.IsNaN(o.DesiredColumnWidth)
	spacing := o.ColumnSpacing

	if math.IsInf(available, 1) {
		width = DefaultDesiredColumnWidth
		if desiredSet {
			width = o.DesiredColumnWidth
		}
		return width, 1, width
	}
	available = max(available, 0)

	switch o.Stretch {
	case StretchFill:
		if !desiredSet || o.DesiredColumnWidth > available {
			width, count = available, 1
			break
		}
		extent := available + spacing - fillEpsilon
		count = floorCount(extent / (o.DesiredColumnWidth + spacing))
		width = extent/float64(count) - spacing
	default:
		width = available
		if desiredSet {
			width = min(o.DesiredColumnWidth, available)
		}
		count = floorCount(available / (width + spacing))
	}

	occupied := width*float64(count) + spacing*float64(count-1)
	if occupied-available > epsilon && count > 1 {
		count--
	}
	return width, count, available
}

// floorCount floors v into a column count of at least 1. NaN arises from
// 0/0 when both the width and the spacing are zero.
func floorCount(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return 1
	}
	return int(math.Floor(v))
}
