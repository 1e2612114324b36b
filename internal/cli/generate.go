package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/board"
)

// generateCommand creates the generate command for synthetic boards.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		count  int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a board of random tiles",
		Long: `Write a board of pseudo-random tiles for experiments and benchmarks.

The same seed always produces the same board. The output format follows the
file extension (.json or .toml).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			b := board.Generate(count, seed)
			if err := board.WriteBoardFile(b, output); err != nil {
				return fmt.Errorf("write board: %w", err)
			}
			c.Logger.Debug("generated board", "tiles", count, "seed", seed)
			printSuccess("Generated %d tiles", count)
			printFile(output)
			printDetail("seed %d", seed)
			printNewline()
			printNextStep("Browse", appName+" scroll "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "board.json", "output file (.json or .toml)")
	cmd.Flags().IntVarP(&count, "count", "n", 200, "number of tiles")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: time based)")

	return cmd
}
