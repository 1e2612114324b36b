package board

import (
	"fmt"
	"math/rand/v2"
)

var palette = []string{
	"#e76f51", "#f4a261", "#e9c46a", "#2a9d8f", "#264653",
	"#8ab17d", "#b56576", "#6d597a", "#355070", "#eaac8b",
}

// Generate builds a board of n tiles with pseudo-random sizes. The same seed
// always yields the same board. Roughly two thirds of the tiles are images
// with an aspect ratio between 1:2 and 2:1; the rest are fixed-height blocks,
// and every fifth tile carries a caption.
func Generate(n int, seed uint64) *Board {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	b := &Board{
		Name:  fmt.Sprintf("generated-%d", seed),
		Tiles: make([]Tile, n),
	}
	for i := range b.Tiles {
		t := Tile{
			ID:    fmt.Sprintf("tile-%d", i),
			Color: palette[rng.IntN(len(palette))],
		}
		if rng.IntN(3) < 2 {
			t.Width = 400
			t.Height = float64(200 + rng.IntN(601))
		} else {
			t.Height = float64(40 + rng.IntN(161))
		}
		if i%5 == 4 {
			t.Caption = fmt.Sprintf("Tile %d", i)
		}
		b.Tiles[i] = t
	}
	return b
}
