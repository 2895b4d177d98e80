package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenviz/bubblegraph/internal/server"
	"github.com/tokenviz/bubblegraph/pkg/cache"
	"github.com/tokenviz/bubblegraph/pkg/config"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/pipeline"
	"github.com/tokenviz/bubblegraph/pkg/store"
)

// serveCommand creates the serve command for running the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bubble-map HTTP service",
		Long: `Run the bubble-map HTTP service.

The serve command starts an HTTP server exposing the rendering pipeline:

  GET /bubble-map?token=<address>&chain=<chain>&format=<svg|png|pdf>
  GET /map-metadata?token=<address>&chain=<chain>
  GET /healthz
  GET /metrics

Configuration is read from a TOML file and BUBBLEGRAPH_* environment
variables. The server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

// runServe loads the configuration, wires the cache, store, and runner, and
// runs the server until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	cc, err := serverCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.Client = mapdata.NewClient(cfg.Provider.BaseURL)
	defer runner.Close()

	var opts []server.Option
	if cfg.Store.Enabled {
		ms, err := store.Connect(ctx, cfg.Store.URI, cfg.Store.Database)
		if err != nil {
			return fmt.Errorf("connect store: %w", err)
		}
		defer ms.Close(context.Background())
		opts = append(opts, server.WithStore(ms))
		c.Logger.Info("Map archive enabled", "database", cfg.Store.Database)
	}

	srv := server.New(runner, cfg, c.Logger, opts...)

	c.Logger.Info("Starting server", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend)
	return srv.ListenAndServe(ctx)
}

// serverCache constructs the cache backend named by the configuration.
func serverCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	case "none":
		return cache.NewNullCache(), nil
	case "file", "":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
