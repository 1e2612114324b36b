// Package virtual hosts a staggered layout over an in-memory tile collection.
//
// A [Host] plays the role a scrolling UI control plays for the layout in
// [github.com/matzehuels/masonry/pkg/core/stagger]: it reports the item count
// and the realization region, lends elements from a pool, measures them and
// records where they were arranged.
//
// # Realization
//
// The realization region is the viewport grown by [DefaultCacheLength]
// viewport heights, half above and half below, so tiles just outside the
// window are already measured when the user scrolls. A viewport with an
// infinite height realizes everything, which is how the pipeline computes a
// complete layout.
//
// # Mutations
//
// [Host.Insert], [Host.Remove], [Host.Replace], [Host.Move] and [Host.Reset]
// change the collection and report the change to the layout, which drops the
// cached suffix it invalidates. Call [Host.Pass] afterwards to lay out again.
//
//	h := virtual.New(b.Tiles, virtual.WithViewport(virtual.Viewport{Width: 1200, Height: 800}))
//	defer h.Close()
//	res := h.Pass(ctx)
//	h.ScrollBy(400)
//	res = h.Pass(ctx)
package virtual
