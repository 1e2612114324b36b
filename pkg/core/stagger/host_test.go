package stagger

import (
	"fmt"
	"math"
	"slices"
)

type fakeElement struct {
	index int
}

// fakeHost is a recording Context over a slice of item heights.
type fakeHost struct {
	heights  []float64
	region   Rect
	state    any
	live     map[int]*fakeElement
	created  int
	recycled int
	measured []int
	arranged map[int]Rect
}

func newFakeHost(heights []float64, region Rect) *fakeHost {
	return &fakeHost{
		heights:  heights,
		region:   region,
		live:     make(map[int]*fakeElement),
		arranged: make(map[int]Rect),
	}
}

func (h *fakeHost) ItemCount() int        { return len(h.heights) }
func (h *fakeHost) RealizationRect() Rect { return h.region }
func (h *fakeHost) LayoutState() any      { return h.state }
func (h *fakeHost) SetLayoutState(s any)  { h.state = s }

func (h *fakeHost) GetOrCreateElementAt(i int) Element {
	if el, ok := h.live[i]; ok {
		return el
	}
	el := &fakeElement{index: i}
	h.live[i] = el
	h.created++
	return el
}

func (h *fakeHost) RecycleElement(el Element) {
	e := el.(*fakeElement)
	if h.live[e.index] != e {
		panic(fmt.Sprintf("recycle of element %d that is not live", e.index))
	}
	delete(h.live, e.index)
	h.recycled++
}

func (h *fakeHost) Measure(el Element, available Size) Size {
	e := el.(*fakeElement)
	h.measured = append(h.measured, e.index)
	return Size{Width: available.Width, Height: h.heights[e.index]}
}

func (h *fakeHost) Arrange(el Element, bounds Rect) {
	h.arranged[el.(*fakeElement).index] = bounds
}

func (h *fakeHost) insert(i int, height float64) {
	h.heights = slices.Insert(h.heights, i, height)
}

func (h *fakeHost) remove(i int) {
	h.heights = slices.Delete(h.heights, i, i+1)
}

// sampleHeights returns n deterministic heights between 20 and 109.
func sampleHeights(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(20 + (i*37)%90)
	}
	return out
}

var everything = Rect{X: 0, Y: 0, Width: 300, Height: math.MaxFloat64 / 4}

// run initializes a layout on h and runs one pass at width 300.
func run(l *Layout, h *fakeHost) Size {
	if h.state == nil {
		l.Initialize(h)
	}
	return pass(l, h)
}

func pass(l *Layout, h *fakeHost) Size {
	desired := l.Measure(h, Size{Width: 300, Height: math.Inf(1)})
	l.Arrange(h, desired)
	return desired
}

func intersects(b, region Rect) bool {
	return !(b.Bottom() < region.Top()) && !(b.Top() > region.Bottom())
}
