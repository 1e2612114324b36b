package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/virtual"
)

// scrollCommand creates the interactive viewer command.
func (c *CLI) scrollCommand() *cobra.Command {
	var (
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "scroll [board.json|board.toml|url]",
		Short: "Browse a board in the terminal",
		Long: `Browse a board in the terminal.

The viewer keeps a virtualizing host over the board: only the tiles near the
visible rows are measured and realized, and scrolling, resizing, inserting or
removing tiles re-runs an incremental pass. Press s to see what each pass did
and ? for every key binding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScroll(cmd.Context(), args[0], flags, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runScroll(ctx context.Context, input string, flags layoutFlags, noCache bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Input:    input,
		Refresh:  flags.refresh,
		Settings: flags.settings(),
		Defaults: cfg.Layout.Settings(),
		Logger:   c.Logger,
	}
	b, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load board %s: %w", input, err)
	}
	settings := opts.EffectiveSettings(b)
	o, err := settings.Options()
	if err != nil {
		return err
	}

	h := virtual.New(b.Tiles,
		virtual.WithLayoutOptions(o),
		virtual.WithViewport(virtual.Viewport{Width: settings.Width}),
		virtual.WithCacheLength(cfg.Viewport.CacheLength),
	)
	defer h.Close()

	name := b.Name
	if name == "" {
		name = inputBase(input)
	}
	c.Logger.Debug("starting viewer", "tiles", len(b.Tiles), "width", settings.Width)

	p := tea.NewProgram(newViewerModel(h, name, settings.Width), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
