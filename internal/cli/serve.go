package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/internal/config"
	"github.com/matzehuels/masonry/internal/server"
	"github.com/matzehuels/masonry/pkg/session"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts, renders and live sessions over HTTP",
		Long: `Serve layouts, renders and live sessions over HTTP.

Stateless endpoints lay out and render boards sent in the request body or
fetched by URL. Sessions keep a virtualizing host per client so scrolling and
collection changes only measure what they invalidate.

The cache backend (file, redis, mongo or none) comes from the [cache] section
of the configuration file or MASONRY_CACHE_BACKEND.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	ch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := newRunner(ch, cfg, c.Logger)
	defer runner.Close()

	sessions := session.NewManager(cfg.Server.SessionTTL.Duration, c.Logger)
	defer sessions.Close()

	srv := server.New(runner, sessions, c.Logger, serverConfig(cfg))

	printInfo("Listening on %s", StyleLink.Render(cfg.Server.Addr))
	printDetail("cache: %s, session ttl: %s", backendName(cfg, noCache), sessions.TTL())
	return srv.ListenAndServe(ctx)
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Addr:            cfg.Server.Addr,
		RequestTimeout:  cfg.Server.RequestTimeout.Duration,
		CleanupInterval: cfg.Server.CleanupInterval.Duration,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Defaults:        cfg.Layout.Settings(),
		Viewport:        cfg.Viewport.Viewport(),
		CacheLength:     cfg.Viewport.CacheLength,
		Theme:           cfg.Render.Theme,
		Labels:          cfg.Render.Labels,
		Guides:          cfg.Render.Guides,
		Scale:           cfg.Render.Scale,
	}
}

func backendName(cfg config.Config, noCache bool) string {
	switch {
	case noCache:
		return "none"
	case cfg.Cache.Backend == "":
		return "file"
	default:
		return cfg.Cache.Backend
	}
}
