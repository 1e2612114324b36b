package virtual

import (
	"math"

	"github.com/matzehuels/masonry/pkg/core/stagger"
)

// DefaultCacheLength is the realization buffer in viewport heights: half of
// it is kept above the viewport and half below.
const DefaultCacheLength = 2.0

// Viewport is the visible window over the content. Offset is the scroll
// position of its top edge. An infinite Height realizes the whole content.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Offset float64 `json:"offset"`
}

// Rect returns the viewport in content coordinates.
func (v Viewport) Rect() stagger.Rect {
	return stagger.Rect{X: 0, Y: v.Offset, Width: v.Width, Height: v.Height}
}

// IsEmpty reports whether the viewport has no area to realize.
func (v Viewport) IsEmpty() bool { return v.Width == 0 && v.Height == 0 }

// realization extends v by cacheLength viewport heights, split evenly above
// and below and clipped at the content top.
func realization(v Viewport, cacheLength float64) stagger.Rect {
	if v.IsEmpty() {
		return stagger.Rect{}
	}
	if math.IsInf(v.Height, 1) {
		return stagger.Rect{X: 0, Y: 0, Width: v.Width, Height: math.Inf(1)}
	}
	extra := v.Height * cacheLength / 2
	top := math.Max(0, v.Offset-extra)
	bottom := v.Offset + v.Height + extra
	return stagger.Rect{X: 0, Y: top, Width: v.Width, Height: bottom - top}
}

// clampOffset keeps a scroll position inside [0, content-viewport].
func clampOffset(offset, content, viewport float64) float64 {
	limit := math.Max(0, content-viewport)
	return math.Max(0, math.Min(offset, limit))
}
