package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotify/internal/adapters/http"
	"github.com/jsamuelsen/quotify/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotify/internal/ports"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var warm bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quote HTTP API",
		Long: `Serve the JSON API under /api/v1/quotes and the probes under /-/.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, cmd.ErrOrStderr(), func(rt *runtime) error {
				return serve(cmd.Context(), rt, warm)
			})
		},
	}

	cmd.Flags().BoolVar(&warm, "warm", true, "Load the quote batch at startup instead of on the first request")

	return cmd
}

// serve runs the HTTP API until ctx is canceled or the listener fails.
func serve(ctx context.Context, rt *runtime, warm bool) error {
	registry := ports.NewHealthRegistry(ports.WithCheckTimeout(rt.cfg.Client.Timeout))

	// A down quote API only degrades readiness: the fallback table still serves.
	if err := registry.RegisterOptional(rt.quotes); err != nil {
		return fmt.Errorf("registering quote API health check: %w", err)
	}

	if err := registry.Register(rt.cache); err != nil {
		return fmt.Errorf("registering cache health check: %w", err)
	}

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	server := http.New(&rt.cfg.Server, rt.logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        rt.logger,
		ServiceName:   rt.cfg.Telemetry.ServiceName,
		HealthHandler: handlers.NewHealthHandler(registry, buildInfo),
		QuoteHandler:  handlers.NewQuoteHandler(rt.service),
		Timeout:       rt.cfg.Server.RequestTimeout,
	})

	rt.logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", rt.cfg.App.Environment),
		slog.String("cache_backend", rt.cfg.Cache.Backend),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	if warm {
		g.Go(func() error {
			v, err := rt.service.Current(gctx)
			if err != nil {
				rt.logger.Warn("warm load failed", slog.Any("error", err))
				return nil
			}

			rt.logger.Info("batch ready",
				slog.Int("size", v.Position.Total),
				slog.Time("fetched_at", v.FetchedAt),
			)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	rt.logger.Info("shutdown complete")

	return nil
}
