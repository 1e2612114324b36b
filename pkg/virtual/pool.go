package virtual

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/core/stagger"
)

// Element is a materialized tile. Elements are owned by the host's pool and
// lent to the layout; Index is -1 while the element sits in the pool.
type Element struct {
	Index  int
	Tile   board.Tile
	Bounds stagger.Rect

	serial int
}

// Serial identifies the element across rebinds. Two tiles showing the same
// serial at different times reused one element.
func (e *Element) Serial() int { return e.serial }

// PoolStats counts element traffic since the host was created.
type PoolStats struct {
	Created  int `json:"created"`  // elements allocated
	Reused   int `json:"reused"`   // bindings served from the free list
	Recycled int `json:"recycled"` // elements returned to the free list
	Live     int `json:"live"`     // elements currently bound
	Free     int `json:"free"`     // elements waiting in the free list
}

// pool hands out elements bound to tile indices. A free list keeps reuse
// deterministic, which sync.Pool would not.
type pool struct {
	live   map[int]*Element
	free   []*Element
	serial int
	stats  PoolStats
}

func newPool() *pool {
	return &pool{live: make(map[int]*Element)}
}

// bind returns the element bound to index, binding one if necessary.
func (p *pool) bind(index int, t board.Tile) *Element {
	if el, ok := p.live[index]; ok {
		return el
	}
	var el *Element
	if n := len(p.free); n > 0 {
		el = p.free[n-1]
		p.free = p.free[:n-1]
		if el.Index != -1 {
			panic(fmt.Sprintf("virtual: pooled element %d still bound to index %d", el.serial, el.Index))
		}
		p.stats.Reused++
	} else {
		p.serial++
		el = &Element{serial: p.serial}
		p.stats.Created++
	}
	el.Index = index
	el.Tile = t
	el.Bounds = stagger.Rect{}
	p.live[index] = el
	return el
}

// recycle returns el to the free list. Recycling an element that is not
// bound is a bookkeeping bug in the caller and panics.
func (p *pool) recycle(el *Element) {
	if el.Index < 0 {
		panic(fmt.Sprintf("virtual: element %d recycled twice", el.serial))
	}
	if p.live[el.Index] != el {
		panic(fmt.Sprintf("virtual: element %d is not the one bound to index %d", el.serial, el.Index))
	}
	delete(p.live, el.Index)
	el.Index = -1
	el.Tile = board.Tile{}
	p.free = append(p.free, el)
	p.stats.Recycled++
}

// retile refreshes the content of a bound element in place.
func (p *pool) retile(index int, t board.Tile) {
	if el, ok := p.live[index]; ok {
		el.Tile = t
	}
}

func (p *pool) snapshot() PoolStats {
	s := p.stats
	s.Live = len(p.live)
	s.Free = len(p.free)
	return s
}
