package board

import (
	"math"

	"github.com/matzehuels/masonry/pkg/core/stagger"
	errs "github.com/matzehuels/masonry/pkg/errors"
)

// CaptionHeight is the extent added below a tile that has a caption.
const CaptionHeight = 24.0

// Tile is one item of a board.
type Tile struct {
	ID      string  `json:"id" toml:"id" bson:"id"`
	Title   string  `json:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Caption string  `json:"caption,omitempty" toml:"caption,omitempty" bson:"caption,omitempty"`
	Width   float64 `json:"width,omitempty" toml:"width,omitempty" bson:"width,omitempty"`
	Height  float64 `json:"height" toml:"height" bson:"height"`
	Color   string  `json:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
	URL     string  `json:"url,omitempty" toml:"url,omitempty" bson:"url,omitempty"`
}

// HeightAt returns the tile's extent when laid out in a column of the given
// width. Image tiles scale by aspect ratio; an unbounded or zero column
// width leaves them at their natural height.
func (t Tile) HeightAt(columnWidth float64) float64 {
	h := t.Height
	if t.Width > 0 && columnWidth > 0 && !math.IsInf(columnWidth, 0) {
		h = t.Height * columnWidth / t.Width
	}
	if t.Caption != "" {
		h += CaptionHeight
	}
	return h
}

// Validate checks the tile's ID and size.
func (t Tile) Validate() error {
	if err := errs.ValidateTileID(t.ID); err != nil {
		return err
	}
	if err := errs.ValidateDimension("height", t.Height); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidBoard, err, "tile %q", t.ID)
	}
	if t.Width != 0 {
		if err := errs.ValidateDimension("width", t.Width); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidBoard, err, "tile %q", t.ID)
		}
	}
	return nil
}

// Label returns the title, or the ID when the tile has none.
func (t Tile) Label() string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// Settings are layout options stored with a board. Zero values mean "not
// set"; callers fill them from configuration or flags.
type Settings struct {
	DesiredColumnWidth float64 `json:"desired_column_width,omitempty" toml:"desired_column_width,omitempty" bson:"desired_column_width,omitempty"`
	FullWidth          bool    `json:"full_width,omitempty" toml:"full_width,omitempty" bson:"full_width,omitempty"`
	Stretch            string  `json:"stretch,omitempty" toml:"stretch,omitempty" bson:"stretch,omitempty"`
	ColumnSpacing      float64 `json:"column_spacing,omitempty" toml:"column_spacing,omitempty" bson:"column_spacing,omitempty"`
	RowSpacing         float64 `json:"row_spacing,omitempty" toml:"row_spacing,omitempty" bson:"row_spacing,omitempty"`
	Width              float64 `json:"width,omitempty" toml:"width,omitempty" bson:"width,omitempty"`
}

// Options converts the settings into layout options. FullWidth leaves the
// desired column width unset so a single column spans the available width.
func (s Settings) Options() (stagger.Options, error) {
	stretch, err := stagger.ParseStretch(s.Stretch)
	if err != nil {
		return stagger.Options{}, errs.Wrap(errs.ErrCodeInvalidStretch, err, "invalid stretch")
	}
	o := stagger.DefaultOptions()
	o.Stretch = stretch
	o.ColumnSpacing = s.ColumnSpacing
	o.RowSpacing = s.RowSpacing
	switch {
	case s.FullWidth:
		o.DesiredColumnWidth = math.NaN()
	case s.DesiredColumnWidth > 0:
		o.DesiredColumnWidth = s.DesiredColumnWidth
	}
	if err := o.Validate(); err != nil {
		return stagger.Options{}, errs.Wrap(errs.ErrCodeInvalidOptions, err, "invalid layout settings")
	}
	return o, nil
}

// Merge returns s with every unset field taken from fallback.
func (s Settings) Merge(fallback Settings) Settings {
	if s.DesiredColumnWidth == 0 && !s.FullWidth {
		s.DesiredColumnWidth = fallback.DesiredColumnWidth
		s.FullWidth = fallback.FullWidth
	}
	if s.Stretch == "" {
		s.Stretch = fallback.Stretch
	}
	if s.ColumnSpacing == 0 {
		s.ColumnSpacing = fallback.ColumnSpacing
	}
	if s.RowSpacing == 0 {
		s.RowSpacing = fallback.RowSpacing
	}
	if s.Width == 0 {
		s.Width = fallback.Width
	}
	return s
}

// Board is an ordered collection of tiles with optional layout settings.
type Board struct {
	Name   string   `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Layout Settings `json:"layout,omitempty" toml:"layout,omitempty" bson:"layout,omitempty"`
	Tiles  []Tile   `json:"tiles" toml:"tiles" bson:"tiles"`
}

// Validate checks tile IDs (valid and unique), tile sizes and settings.
func (b *Board) Validate() error {
	seen := make(map[string]int, len(b.Tiles))
	for i, t := range b.Tiles {
		if err := t.Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidBoard, err, "tile %d", i)
		}
		if j, dup := seen[t.ID]; dup {
			return errs.New(errs.ErrCodeInvalidBoard, "duplicate tile id %q (tiles %d and %d)", t.ID, j, i)
		}
		seen[t.ID] = i
	}
	if _, err := b.Layout.Options(); err != nil {
		return err
	}
	if b.Layout.Width < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "layout width must not be negative")
	}
	return nil
}

// Index returns the position of the tile with the given ID, or -1.
func (b *Board) Index(id string) int {
	for i, t := range b.Tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}
