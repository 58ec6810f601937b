package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/gideon/internal/command"
	"github.com/mcoot/gideon/internal/config"
	"github.com/mcoot/gideon/internal/dependencies/clock"
	"github.com/mcoot/gideon/internal/middleware"
	"github.com/mcoot/gideon/internal/model"
	"github.com/mcoot/gideon/internal/registry"
	"github.com/mcoot/gideon/internal/roster"
	"github.com/mcoot/gideon/internal/services/auth"
	"github.com/mcoot/gideon/internal/services/lookup"
	"github.com/mcoot/gideon/internal/storage"
	"github.com/mcoot/gideon/internal/storage/file"
	"github.com/mcoot/gideon/internal/storage/memory"
	redisstorage "github.com/mcoot/gideon/internal/storage/redis"
	"github.com/mcoot/gideon/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Lookup command.Lookup

	// Metrics
	Metrics     *prometheus.Registry
	HTTPMetrics *middleware.HTTPMetrics

	// Services
	Registry    *registry.Registry
	Composer    *roster.Composer
	AuthService *auth.Service
	Executor    *command.Executor

	closers []func() error
}

// New creates a new application with all dependencies wired, opening the
// storage backend named by the configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closeStore, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	client := lookup.New(lookup.Config{
		BaseURL:    cfg.Lookup.BaseURL,
		SessionURL: cfg.Lookup.SessionURL,
		Timeout:    cfg.Lookup.Timeout,
	}, logger)

	app, err := newWithDependencies(ctx, store, clock.New(), client, cfg, logger)
	if err != nil {
		client.Close()
		if closeStore != nil {
			_ = closeStore()
		}
		return nil, err
	}

	app.closers = append(app.closers, func() error {
		client.Close()
		return nil
	})
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}
	return app, nil
}

// openStorage creates the configured backend. The returned closer is nil
// for backends holding no connection.
func openStorage(cfg config.StorageConfig) (storage.Storage, func() error, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		return memory.New(), nil, nil
	case config.StorageFile:
		if cfg.Path == "" {
			return nil, nil, errors.New("storage path required when storage type is file")
		}
		return file.New(cfg.Path, cfg.BackupDir), nil, nil
	case config.StorageRedis:
		if cfg.RedisURL == "" {
			return nil, nil, errors.New("redis URL required when storage type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StorageSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("invalid storage type %q", cfg.Type)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(ctx context.Context, store storage.Storage, clk clock.Clock, lk command.Lookup, cfg *config.Config, logger *slog.Logger) (*App, error) {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := registry.NewMetrics(promRegistry)

	reg, err := registry.Open(ctx, store, registry.Options{
		Clock:   clk,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	supporters := make([]model.ContactID, len(cfg.Roster.Supporters))
	for i, id := range cfg.Roster.Supporters {
		supporters[i] = model.ContactID(id)
	}
	composer := roster.New(roster.Options{
		SoftLimit:  cfg.Roster.SoftLimit,
		HardLimit:  cfg.Roster.HardLimit,
		Footer:     cfg.Roster.Footer,
		Disclaimer: cfg.Roster.Disclaimer,
		Supporters: supporters,
	}, clk, logger, metrics)

	authService := auth.New(reg, clk, auth.Config{
		TokenHash:       cfg.Auth.APITokenHash,
		SessionDuration: cfg.Auth.SessionDuration,
	})

	parser := command.NewParser(cfg.CommandPrefix)
	executor := command.NewExecutor(reg, composer, lk, authService, parser, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Lookup:      lk,
		Metrics:     promRegistry,
		HTTPMetrics: middleware.NewHTTPMetrics(promRegistry),
		Registry:    reg,
		Composer:    composer,
		AuthService: authService,
		Executor:    executor,
	}, nil
}

// Close releases the storage connection and lookup client
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
