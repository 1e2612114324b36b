// Package pipeline provides the board -> layout -> artifact pipeline for
// masonry.
//
// The CLI, the HTTP server and the interactive viewer all go through this
// package, so a board laid out from any entry point yields the same
// placements and the same cache keys.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a board from a file, inline bytes, or a remote URL
//  2. Layout: place every tile with the staggered layout
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run on its own or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "board.toml",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	b, err := runner.Load(ctx, opts)
//	l, err := runner.Layout(ctx, b, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/cache"
	errs "github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the available layout width in pixels.
	DefaultWidth = 1000.0

	// MaxWidth bounds the available width accepted from callers.
	MaxWidth = 100000.0

	// MaxTiles bounds the size of a board accepted by the pipeline.
	MaxTiles = 100000
)

// Format constants for output formats.
const (
	FormatSVG  = sink.FormatSVG
	FormatPNG  = sink.FormatPNG
	FormatPDF  = sink.FormatPDF
	FormatJSON = sink.FormatJSON
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Board takes precedence over BoardData, which takes
	// precedence over Input (a file path or an http(s) URL).
	Input       string       `json:"input,omitempty"`
	BoardData   []byte       `json:"-"`
	BoardFormat string       `json:"board_format,omitempty"`
	Board       *board.Board `json:"board,omitempty"`
	Refresh     bool         `json:"refresh,omitempty"`

	// Layout options. Settings override the board's own settings, which
	// override Defaults.
	Settings board.Settings `json:"settings,omitempty"`
	Defaults board.Settings `json:"-"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Theme   string   `json:"theme,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Guides  bool     `json:"guides,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Board is the loaded board.
	Board *board.Board

	// BoardHash is the content hash of the board.
	BoardHash string

	// Layout contains the placements of every tile.
	Layout board.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount   int
	ColumnCount int
	Height      float64
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether a remote board came from cache
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !sink.ValidFormat(format) {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(sink.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme exists.
func ValidateTheme(theme string) error {
	if _, err := sink.LookupTheme(theme); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "invalid theme")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a board source is set.
func (o *Options) ValidateForLoad() error {
	if o.Board == nil && len(o.BoardData) == 0 && o.Input == "" {
		return errs.New(errs.ErrCodeInvalidInput, "board input is required")
	}
	if o.BoardFormat != "" {
		if _, err := board.ParseFormat(o.BoardFormat); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// ValidateForLayout checks the layout overrides. Board settings are checked
// when the board is loaded.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	if _, err := o.Settings.Merge(o.Defaults).Options(); err != nil {
		return err
	}
	if w := o.Settings.Width; w != 0 && (w < 0 || w > MaxWidth || math.IsNaN(w)) {
		return errs.New(errs.ErrCodeInvalidOptions, "width must be in (0, %v], got %v", MaxWidth, w)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		if f = strings.ToLower(f); !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	o.Formats = formats
	if o.Theme == "" {
		o.Theme = sink.DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = sink.DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 10 || math.IsNaN(o.Scale) {
		return errs.New(errs.ErrCodeInvalidOptions, "scale must be in (0, 10], got %v", o.Scale)
	}
	return ValidateTheme(o.Theme)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsRemote reports whether Input names an http(s) URL.
func (o *Options) IsRemote() bool {
	return strings.HasPrefix(o.Input, "http://") || strings.HasPrefix(o.Input, "https://")
}

// EffectiveSettings merges the option overrides, the board's settings and
// the defaults, and fills the width with [DefaultWidth] when none is set.
func (o *Options) EffectiveSettings(b *board.Board) board.Settings {
	s := o.Settings.Merge(b.Layout).Merge(o.Defaults)
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	return s
}

// LayoutKeyOpts returns cache key options for a layout with settings s.
func LayoutKeyOpts(s board.Settings) (cache.LayoutKeyOpts, error) {
	so, err := s.Options()
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	desired := so.DesiredColumnWidth
	if math.IsNaN(desired) {
		desired = 0
	}
	return cache.LayoutKeyOpts{
		Width:              s.Width,
		DesiredColumnWidth: desired,
		Stretch:            so.Stretch.String(),
		ColumnSpacing:      so.ColumnSpacing,
		RowSpacing:         so.RowSpacing,
	}, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Theme:  strings.ToLower(o.Theme),
		Labels: o.Labels,
		Guides: o.Guides,
		Scale:  o.Scale,
	}
}

// SinkOptions returns the renderer options.
func (o *Options) SinkOptions() sink.Options {
	return sink.Options{Theme: o.Theme, Labels: o.Labels, Guides: o.Guides, Scale: o.Scale}
}

// HashBoard returns the content hash used in layout cache keys.
func HashBoard(b *board.Board) string {
	data, _ := json.Marshal(b)
	return cache.Hash(data)
}
