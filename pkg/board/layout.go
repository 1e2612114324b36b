package board

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - computed placement of a board
// =============================================================================

// Layout is the serialization format for a placed board.
//
// Width and Height are the content extent. Column geometry is stored so a
// renderer can draw column guides without re-deriving it, and ColumnHeights
// holds each column's accumulated height after the last tile.
type Layout struct {
	Board  string  `json:"board,omitempty" bson:"board,omitempty"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	ColumnWidth   float64   `json:"column_width" bson:"column_width"`
	Columns       int       `json:"columns" bson:"columns"`
	ColumnSpacing float64   `json:"column_spacing,omitempty" bson:"column_spacing,omitempty"`
	RowSpacing    float64   `json:"row_spacing,omitempty" bson:"row_spacing,omitempty"`
	Stretch       string    `json:"stretch,omitempty" bson:"stretch,omitempty"`
	ColumnHeights []float64 `json:"column_heights,omitempty" bson:"column_heights,omitempty"`

	Placements []Placement `json:"placements" bson:"placements"`
}

// Column returns the placements of column c in top order.
func (l *Layout) Column(c int) []Placement {
	var out []Placement
	for _, p := range l.Placements {
		if p.Column == c {
			out = append(out, p)
		}
	}
	return out
}

// Visible returns the placements intersecting the vertical band [top, bottom].
func (l *Layout) Visible(top, bottom float64) []Placement {
	var out []Placement
	for _, p := range l.Placements {
		if p.Y+p.Height >= top && p.Y <= bottom {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// Placement - positioned tile
// =============================================================================

// Placement is one tile positioned by the layout.
type Placement struct {
	ID     string  `json:"id" bson:"id"`
	Index  int     `json:"index" bson:"index"`
	Column int     `json:"column" bson:"column"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Caption string `json:"caption,omitempty" bson:"caption,omitempty"`
	Color   string `json:"color,omitempty" bson:"color,omitempty"`
	URL     string `json:"url,omitempty" bson:"url,omitempty"`
}

// Label returns the title, or the ID when the placement has none.
func (p Placement) Label() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// A layout with tiles but no columns is rejected.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Placements) > 0 && l.Columns < 1 {
		return Layout{}, fmt.Errorf("layout with placements must have at least one column")
	}
	for _, p := range l.Placements {
		if p.Column < 0 || p.Column >= l.Columns {
			return Layout{}, fmt.Errorf("placement %q: column %d out of range", p.ID, p.Column)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
