// Package cli implements the masonry command-line interface.
//
// The commands mirror the pipeline stages: layout turns a board into a
// layout.json, visualize renders a layout.json, and render goes straight
// from a board to SVG, PNG, PDF or JSON. scroll opens an interactive viewer
// that drives the virtualizing host the way a UI would, and serve exposes
// the same operations over HTTP.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
//
// # Configuration
//
// Defaults come from ~/.config/masonry/config.toml (see internal/config);
// flags override the file for the current invocation.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/internal/config"
	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "masonry"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Masonry lays out tiles in staggered columns",
		Long: `Masonry arranges variable-height tiles in a staggered (masonry) grid:
each tile goes to the shortest column. Layouts are computed incrementally, so
only the tiles near the viewport are measured, and can be rendered to SVG, PNG,
PDF or JSON, browsed in the terminal, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/masonry/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.scrollCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per invocation.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend)
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return newRunner(ch, cfg, c.Logger), nil
}

func newRunner(ch cache.Cache, cfg config.Config, logger *log.Logger) *pipeline.Runner {
	r := pipeline.NewRunner(ch, nil, logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r
}

func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cfg.Cache.CacheConfig()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cc)
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the layout settings shared by layout, render and scroll.
// Zero values leave the board's settings or the configuration in charge.
type layoutFlags struct {
	columnWidth   float64
	fullWidth     bool
	stretch       string
	columnSpacing float64
	rowSpacing    float64
	width         float64
	refresh       bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.columnWidth, "column-width", 0, "desired column width")
	cmd.Flags().BoolVar(&f.fullWidth, "full-width", false, "one column spanning the available width")
	cmd.Flags().StringVar(&f.stretch, "stretch", "", "column stretch: none, fill")
	cmd.Flags().Float64Var(&f.columnSpacing, "column-spacing", 0, "gap between columns")
	cmd.Flags().Float64Var(&f.rowSpacing, "row-spacing", 0, "gap between tiles in a column")
	cmd.Flags().Float64Var(&f.width, "width", 0, "available width")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached boards and layouts")
}

func (f *layoutFlags) settings() board.Settings {
	return board.Settings{
		DesiredColumnWidth: f.columnWidth,
		FullWidth:          f.fullWidth,
		Stretch:            f.stretch,
		ColumnSpacing:      f.columnSpacing,
		RowSpacing:         f.rowSpacing,
		Width:              f.width,
	}
}

// renderFlags are the render options shared by render and visualize.
type renderFlags struct {
	formats string
	theme   string
	labels  bool
	guides  bool
	scale   float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "color theme: light, dark")
	cmd.Flags().BoolVar(&f.labels, "labels", true, "draw tile titles")
	cmd.Flags().BoolVar(&f.guides, "guides", false, "draw column guides")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "raster scale for png output")
}

// apply copies the configured render defaults into opts and lets flags the
// user set win.
func (f *renderFlags) apply(cmd *cobra.Command, cfg config.Config, opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	opts.Theme = cfg.Render.Theme
	opts.Labels = cfg.Render.Labels
	opts.Guides = cfg.Render.Guides
	opts.Scale = cfg.Render.Scale
	if f.theme != "" {
		opts.Theme = f.theme
	}
	if cmd.Flags().Changed("labels") {
		opts.Labels = f.labels
	}
	if cmd.Flags().Changed("guides") {
		opts.Guides = f.guides
	}
	if f.scale != 0 {
		opts.Scale = f.scale
	}
	return pipeline.ValidateTheme(opts.Theme)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
