package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the board, layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ch, err := c.openCache(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ch.Close()

			cl, ok := ch.(cache.Clearer)
			if !ok {
				return errors.New("cache backend cannot be cleared")
			}
			n, err := cl.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n < 0 {
				printWarning("The %s backend does not support clearing", backendName(cfg, false))
				return nil
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", backendName(cfg, false))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			cc, err := cfg.Cache.CacheConfig()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			switch cc.Backend {
			case cache.BackendRedis:
				fmt.Fprintln(cmd.OutOrStdout(), cc.RedisURL)
			case cache.BackendMongo:
				fmt.Fprintln(cmd.OutOrStdout(), cc.MongoURI)
			case cache.BackendNone:
				fmt.Fprintln(cmd.OutOrStdout(), "none")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), cc.Dir)
			}
			return nil
		},
	}
}
