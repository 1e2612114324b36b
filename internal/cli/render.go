package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/render/sink"
)

// renderCommand creates the render command: load, layout and render in one go.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		stats   bool
		lflags  layoutFlags
		rflags  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [board.json|board.toml|url]",
		Short: "Lay out and render a board",
		Long: `Lay out and render a board in one step.

Equivalent to 'layout' followed by 'visualize'. Every stage is cached: a board
that did not change skips layout, and a layout that did not change skips
rendering.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Input:    args[0],
				Refresh:  lflags.refresh,
				Settings: lflags.settings(),
				Defaults: cfg.Layout.Settings(),
				Logger:   c.Logger,
			}
			if err := rflags.apply(cmd, cfg, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache, stats)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&stats, "stats", false, "print per-stage timings")
	lflags.register(cmd)
	rflags.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache, stats bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+opts.Input+"...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     opts.Input,
		output:    output,
		cacheHit:  res.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	printStats(res.Stats.TileCount, res.Stats.ColumnCount, res.Stats.Height, res.CacheInfo.LayoutHit)
	if stats {
		printNewline()
		printPipelineStats(res)
	}
	return nil
}

// =============================================================================
// Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim; several formats share output (or the input name) as base path.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output != "" {
		f := p.formats[0]
		if err := os.WriteFile(p.output, p.artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p.output, err)
		}
		printSuccess("Rendered %s", strings.ToUpper(f))
		printFile(p.output)
		return nil
	}

	base := basePath(p.output, p.input)
	status := iconFresh
	if p.cacheHit {
		status = iconCached
	}
	printSuccess("Rendered %s %s", strings.ToUpper(strings.Join(p.formats, ", ")), StyleDim.Render("("+status+")"))
	for _, f := range p.formats {
		file := base + "." + f
		if err := os.WriteFile(file, p.artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
		printFile(file)
	}
	return nil
}

// basePath derives the base output path. An explicit output loses a known
// format extension; otherwise the input name is used.
func basePath(output, input string) string {
	if output == "" {
		return inputBase(input)
	}
	ext := filepath.Ext(output)
	if sink.ValidFormat(strings.TrimPrefix(strings.ToLower(ext), ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// inputBase strips the extension (and a ".layout" infix) from a file path.
// URLs map to the last path element in the working directory.
func inputBase(input string) string {
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name := path.Base(u.Path)
		if name == "." || name == "/" {
			name = "board"
		}
		input = name
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}
