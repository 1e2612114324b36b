package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// layoutCommand creates the layout command for computing board layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		columns bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [board.json|board.toml|url]",
		Short: "Compute the staggered layout of a board",
		Long: `Compute the staggered layout of a board.

The layout command reads a board (JSON or TOML, from a file or an http(s) URL),
places every tile in the shortest column and writes a layout.json that the
'visualize' command renders. Flags override the board's own [layout] settings,
which override the configuration file.

Results are cached, so laying out an unchanged board again is instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, output, noCache, columns)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&columns, "columns", false, "print a per-column summary")
	flags.register(cmd)

	return cmd
}

// runLayout loads the board, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags, output string, noCache, columns bool) error {
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

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d tiles...", len(b.Tiles)))
	spinner.Start()
	p := newProgress(c.Logger)

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, b, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	p.done("layout computed", "columns", l.Columns, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = inputBase(input) + ".layout.json"
	}
	if err := board.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Placements), l.Columns, l.Height, cacheHit)
	if columns {
		printNewline()
		printColumns(l)
	}
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
