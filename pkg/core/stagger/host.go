package stagger

import "math"

// Size is a width and height in layout units.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle. The origin is the top-left corner and
// Y grows downward.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Top returns the top edge of r.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the bottom edge of r.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Right returns the right edge of r.
func (r Rect) Right() float64 { return r.X + r.Width }

// IsEmpty reports whether r has neither width nor height. An empty
// realization region means the host has nothing to realize yet.
func (r Rect) IsEmpty() bool { return r.Width == 0 && r.Height == 0 }

// Element is an opaque handle to a materialized visual element. The host
// defines the concrete type; nil means no element.
type Element any

// Context is the virtualizing host a [Layout] runs against.
type Context interface {
	// ItemCount returns the size of the source collection.
	ItemCount() int

	// RealizationRect returns the viewport plus buffer, in content coordinates.
	RealizationRect() Rect

	// GetOrCreateElementAt materializes the element for index, or returns the
	// one already bound to it.
	GetOrCreateElementAt(index int) Element

	// RecycleElement returns el to the host's pool.
	RecycleElement(el Element)

	// Measure measures el against the available size and returns its desired size.
	Measure(el Element, available Size) Size

	// Arrange positions el at bounds.
	Arrange(el Element, bounds Rect)

	// LayoutState returns the value stored with SetLayoutState.
	LayoutState() any

	// SetLayoutState stores per-host layout state between passes.
	SetLayoutState(state any)
}

// epsilon is the tolerance under which two extents are considered equal.
const epsilon = 1e-6

func nearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < epsilon
}
