package virtual

import (
	"slices"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/core/stagger"
	errs "github.com/matzehuels/masonry/pkg/errors"
)

// Mutation is a collection change in wire form. Index is the insertion,
// removal or replacement point; for moves From is the source and Index the
// destination in the resulting collection.
type Mutation struct {
	Action string       `json:"action"`
	Index  int          `json:"index"`
	From   int          `json:"from,omitempty"`
	Count  int          `json:"count,omitempty"`
	Tiles  []board.Tile `json:"tiles,omitempty"`
}

// Apply dispatches m to the matching collection method.
func (h *Host) Apply(m Mutation) error {
	a, err := stagger.ParseAction(m.Action)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidChange, err, "mutation")
	}
	switch a {
	case stagger.ActionInsert:
		return h.Insert(m.Index, m.Tiles...)
	case stagger.ActionRemove:
		return h.Remove(m.Index, max(m.Count, 1))
	case stagger.ActionReplace:
		return h.Replace(m.Index, m.Tiles...)
	case stagger.ActionMove:
		return h.Move(m.From, m.Index, max(m.Count, 1))
	default:
		return h.Reset(m.Tiles)
	}
}

// Insert adds tiles before index i.
func (h *Host) Insert(i int, tiles ...board.Tile) error {
	if i < 0 || i > len(h.tiles) {
		return errs.New(errs.ErrCodeInvalidChange, "insert index %d out of range [0, %d]", i, len(h.tiles))
	}
	if len(tiles) == 0 {
		return nil
	}
	if err := h.checkTiles(tiles, -1, 0); err != nil {
		return err
	}
	h.tiles = slices.Insert(h.tiles, i, tiles...)
	h.layout.ItemsChanged(h, stagger.InsertAt(i, len(tiles)))
	return nil
}

// Remove deletes n tiles starting at i.
func (h *Host) Remove(i, n int) error {
	if err := h.checkRange("remove", i, n); err != nil {
		return err
	}
	h.tiles = slices.Delete(h.tiles, i, i+n)
	h.layout.ItemsChanged(h, stagger.RemoveAt(i, n))
	return nil
}

// Replace overwrites the tiles starting at i.
func (h *Host) Replace(i int, tiles ...board.Tile) error {
	if err := h.checkRange("replace", i, len(tiles)); err != nil {
		return err
	}
	if err := h.checkTiles(tiles, i, len(tiles)); err != nil {
		return err
	}
	copy(h.tiles[i:], tiles)
	h.layout.ItemsChanged(h, stagger.ReplaceAt(i, len(tiles)))
	return nil
}

// Move relocates n tiles starting at from so that they start at to in the
// resulting collection.
func (h *Host) Move(from, to, n int) error {
	if err := h.checkRange("move", from, n); err != nil {
		return err
	}
	if to < 0 || to > len(h.tiles)-n {
		return errs.New(errs.ErrCodeInvalidChange, "move destination %d out of range [0, %d]", to, len(h.tiles)-n)
	}
	if from == to {
		return nil
	}
	moved := slices.Clone(h.tiles[from : from+n])
	h.tiles = slices.Delete(h.tiles, from, from+n)
	h.tiles = slices.Insert(h.tiles, to, moved...)
	h.layout.ItemsChanged(h, stagger.Move(from, to, n))
	return nil
}

// Reset replaces the whole collection.
func (h *Host) Reset(tiles []board.Tile) error {
	b := board.Board{Tiles: tiles}
	if err := b.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidChange, err, "reset")
	}
	h.tiles = slices.Clone(tiles)
	h.layout.ItemsChanged(h, stagger.Reset())
	return nil
}

// UpdateTile changes the content of tile i without a collection mutation,
// for example when an image finished loading. The tile is remeasured the
// next time it is realized.
func (h *Host) UpdateTile(i int, t board.Tile) error {
	if err := h.checkRange("update", i, 1); err != nil {
		return err
	}
	if err := h.checkTiles([]board.Tile{t}, i, 1); err != nil {
		return err
	}
	h.tiles[i] = t
	h.pool.retile(i, t)
	h.layout.InvalidateItemSize(h, i)
	return nil
}

func (h *Host) checkRange(op string, i, n int) error {
	if n < 1 {
		return errs.New(errs.ErrCodeInvalidChange, "%s count must be positive, got %d", op, n)
	}
	if i < 0 || i+n > len(h.tiles) {
		return errs.New(errs.ErrCodeInvalidChange, "%s range [%d, %d) out of range [0, %d)", op, i, i+n, len(h.tiles))
	}
	return nil
}

// checkTiles validates incoming tiles and rejects IDs already used outside
// the replaced range [skip, skip+n).
func (h *Host) checkTiles(tiles []board.Tile, skip, n int) error {
	ids := make(map[string]bool, len(h.tiles))
	for i, t := range h.tiles {
		if i >= skip && i < skip+n {
			continue
		}
		ids[t.ID] = true
	}
	for _, t := range tiles {
		if err := t.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidChange, err, "tile %q", t.ID)
		}
		if ids[t.ID] {
			return errs.New(errs.ErrCodeInvalidChange, "duplicate tile id %q", t.ID)
		}
		ids[t.ID] = true
	}
	return nil
}
