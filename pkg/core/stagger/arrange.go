package stagger

// Arrange positions every placed item that intersects the realization
// region and returns finalSize unchanged.
func (l *Layout) Arrange(ctx Context, finalSize Size) Size {
	st := l.StateOf(ctx)
	region := ctx.RealizationRect()
	if region.IsEmpty() {
		return finalSize
	}
	g := st.geometry
	for c, col := range st.columns {
		x := g.ColumnOffset(c)
		for _, it := range col.items {
			if it.Bottom() < region.Top() {
				continue
			}
			if it.Top > region.Bottom() {
				break
			}
			el := st.acquire(it)
			ctx.Arrange(el, Rect{X: x, Y: it.Top, Width: g.ColumnWidth, Height: it.Height})
		}
	}
	return finalSize
}
