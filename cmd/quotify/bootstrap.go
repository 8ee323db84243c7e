package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotify/internal/adapters/clients"
	"github.com/jsamuelsen/quotify/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotify/internal/adapters/storage"
	"github.com/jsamuelsen/quotify/internal/app"
	"github.com/jsamuelsen/quotify/internal/platform/config"
	"github.com/jsamuelsen/quotify/internal/platform/logging"
	"github.com/jsamuelsen/quotify/internal/platform/telemetry"
	"github.com/jsamuelsen/quotify/internal/share"
)

// runtime is the wired application shared by the subcommands.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	quotes  *acl.QuoteClient
	cache   storage.Backend
	service *app.QuoteService

	telemetry *telemetry.Provider
}

// bootstrap loads configuration and wires the application. Logs go to logOut.
// The caller must Close the returned runtime.
func bootstrap(ctx context.Context, opts *rootOptions, logOut io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, logOut)
	logging.SetDefault(logger)

	rt := &runtime{cfg: cfg, logger: logger}

	rt.telemetry, err = telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	if err := rt.wire(); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	return rt, nil
}

// wire builds the quote client, the cache backend and the services on top.
func (rt *runtime) wire() error {
	cfg := rt.cfg

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		UserAgent:   cfg.Services.Quote.UserAgent,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      rt.logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	rt.quotes = acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: httpClient,
		Logger: rt.logger,
	})

	rt.cache, err = storage.Open(cfg.Cache)
	if err != nil {
		return fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}

	metrics, err := telemetry.NewStoreMetrics()
	if err != nil {
		return fmt.Errorf("creating store metrics: %w", err)
	}

	store := app.NewQuoteBatchStore(app.StoreConfig{
		Source:     rt.quotes,
		Cache:      rt.cache,
		TargetSize: cfg.Store.TargetSize,
		PageSize:   cfg.Store.PageSize,
		TTL:        cfg.Store.TTL,
		Logger:     rt.logger,
		Metrics:    metrics,
	})

	linker, err := share.New(cfg.Share)
	if err != nil {
		return fmt.Errorf("configuring share links: %w", err)
	}

	rt.service = app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Share:       linker,
		Logger:      rt.logger,
		LoadTimeout: cfg.Store.LoadTimeout,
	})

	return nil
}

// Close releases the cache and flushes telemetry.
func (rt *runtime) Close(ctx context.Context) error {
	var errs []error

	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing cache: %w", err))
		}
	}

	if rt.telemetry != nil {
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// withRuntime bootstraps, runs fn and closes the runtime afterwards.
func withRuntime(ctx context.Context, opts *rootOptions, logOut io.Writer, fn func(*runtime) error) error {
	rt, err := bootstrap(ctx, opts, logOut)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := rt.Close(context.WithoutCancel(ctx)); closeErr != nil {
			rt.logger.Error("shutdown error", slog.Any("error", closeErr))
		}
	}()

	return fn(rt)
}
