package stagger

import "sort"

// Item is the cached geometry for one collection index.
//
// Height is zero until the item has been measured. Top and Height are only
// meaningful once a measure pass has visited the item since it was last
// invalidated.
type Item struct {
	Index   int
	Height  float64
	Top     float64
	Element Element

	column int // -1 while the item is not in the column table
}

func newItem(index int) *Item {
	return &Item{Index: index, column: -1}
}

// Bottom returns Top + Height.
func (it *Item) Bottom() float64 { return it.Top + it.Height }

// Measured reports whether the item has a measured height.
func (it *Item) Measured() bool { return it.Height != 0 }

// Column returns the column the item is assigned to, or -1.
func (it *Item) Column() int { return it.column }

// Column holds the items assigned to one column, in ascending Top order,
// and the column's accumulated height.
type Column struct {
	items  []*Item
	height float64
}

// Len returns the number of items in the column.
func (c *Column) Len() int { return len(c.items) }

// At returns the i-th item of the column.
func (c *Column) At(i int) *Item { return c.items[i] }

// Height returns the bottom of the column's last item, or 0 when empty.
func (c *Column) Height() float64 { return c.height }

func (c *Column) add(it *Item) {
	c.items = append(c.items, it)
	c.height = it.Bottom()
}

// refit updates the accumulated height after it changed size in place.
// it must be the last item of the column.
func (c *Column) refit(it *Item) {
	if n := len(c.items); n > 0 && c.items[n-1] == it {
		c.height = it.Bottom()
	}
}

// truncateFrom removes every item whose index is >= index. Items are
// appended in index order, so the survivors form a prefix.
func (c *Column) truncateFrom(index int) {
	cut := sort.Search(len(c.items), func(i int) bool { return c.items[i].Index >= index })
	if cut == len(c.items) {
		return
	}
	for _, it := range c.items[cut:] {
		it.column = -1
	}
	clear(c.items[cut:])
	c.items = c.items[:cut]
	c.height = 0
	if cut > 0 {
		c.height = c.items[cut-1].Bottom()
	}
}

func (c *Column) reset() {
	for _, it := range c.items {
		it.column = -1
	}
	clear(c.items)
	c.items = c.items[:0]
	c.height = 0
}
