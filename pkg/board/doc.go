// Package board defines the serialization types for masonry boards and
// their computed layouts.
//
// # Boards
//
// A [Board] is an ordered list of [Tile] values plus optional layout
// [Settings]. Boards are read from JSON or TOML:
//
//	{
//	  "name": "moodboard",
//	  "layout": {"desired_column_width": 240, "row_spacing": 8},
//	  "tiles": [
//	    {"id": "a", "width": 1600, "height": 900, "caption": "Harbor"},
//	    {"id": "b", "height": 120}
//	  ]
//	}
//
// A tile with a width is an image: it keeps its aspect ratio, so its
// laid-out height scales with the column width. A tile without one is a
// fixed-height block. Either kind gains [CaptionHeight] when it has a caption.
//
// # Layouts
//
// A [Layout] is the result of placing a board: column geometry plus one
// [Placement] per tile. It is the input of every renderer and the value the
// pipeline caches.
//
//	b, _ := board.ReadBoardFile("moodboard.toml")
//	l, _ := board.ReadLayoutFile("layout.json")
package board
