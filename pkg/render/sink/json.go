package sink

import "github.com/matzehuels/masonry/pkg/board"

// RenderJSON exports the layout in the format [board.ReadLayoutFile] reads.
func RenderJSON(l board.Layout) ([]byte, error) {
	return board.MarshalLayout(l)
}
