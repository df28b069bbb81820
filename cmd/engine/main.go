package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gradascent/nautilus-trader/internal/adapter"
	"github.com/gradascent/nautilus-trader/internal/auth"
	"github.com/gradascent/nautilus-trader/internal/cache"
	"github.com/gradascent/nautilus-trader/internal/config"
	"github.com/gradascent/nautilus-trader/internal/discovery"
	"github.com/gradascent/nautilus-trader/internal/engine"
	"github.com/gradascent/nautilus-trader/internal/identifiers"
	"github.com/gradascent/nautilus-trader/internal/msgbus"
	"github.com/gradascent/nautilus-trader/internal/restclient"
	"github.com/gradascent/nautilus-trader/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/engine.local.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting data engine",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Engine.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"venue", cfg.Adapter.Venue,
		"cache_backend", cfg.Cache.Backend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Cache backend
	store, err := buildCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		store.Close(closeCtx)
	}()

	// Message bus and engine
	bus := msgbus.New(cfg.Connections.BufferSize, logger)
	defer bus.Close()

	eng := engine.New(nil, store, bus, engineConfig(cfg), logger)
	if err := eng.RegisterHandlers(); err != nil {
		logger.Error("failed to register engine handlers", "error", err)
		os.Exit(1)
	}

	// Venue credentials are optional: without them the adapter runs
	// against public endpoints only.
	var signer *auth.Signer
	if cfg.Adapter.APIKey != "" && cfg.Adapter.PrivateKeyPath != "" {
		signer, err = auth.LoadSigner(cfg.Adapter.APIKey, cfg.Adapter.PrivateKeyPath)
		if err != nil {
			logger.Error("failed to load venue credentials", "error", err)
			os.Exit(1)
		}
	}

	rest := restclient.NewClient(
		cfg.Adapter.RestURL,
		signer,
		restclient.WithLogger(logger),
		restclient.WithTimeout(cfg.Adapter.Timeout),
		restclient.WithRetries(cfg.Adapter.MaxRetries, time.Second),
	)

	disc := discovery.New(
		discovery.Config{
			Interval:           cfg.Discovery.Interval,
			PageSize:           cfg.Discovery.PageSize,
			InitialLoadTimeout: cfg.Discovery.InitialLoadTimeout,
		},
		rest,
		identifiers.NewClientId(cfg.Adapter.ClientID),
		identifiers.NewVenue(cfg.Adapter.Venue),
		eng.Response,
		logger,
	)

	client := adapter.New(adapter.Config{
		ClientID:           cfg.Adapter.ClientID,
		Venue:              cfg.Adapter.Venue,
		WSURL:              cfg.Adapter.WSURL,
		Signer:             signer,
		ReconnectBaseDelay: cfg.Connections.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Connections.ReconnectMaxDelay,
		PingInterval:       cfg.Connections.PingInterval,
		StaleAfter:         cfg.Connections.StaleAfter,
		WriteTimeout:       cfg.Connections.WriteTimeout,
		BufferSize:         cfg.Connections.BufferSize,
	}, rest, disc, eng, logger)

	routing := identifiers.NewVenue(cfg.Adapter.Venue)
	eng.RegisterClient(client, &routing)

	eng.Start()
	logger.Info("data engine running",
		"instance_id", cfg.Instance.ID,
		"clients", fmt.Sprintf("%v", []string{cfg.Adapter.ClientID}),
	)

	<-ctx.Done()

	logger.Info("shutting down...")
	eng.Stop()
	eng.Dispose()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := store.Flush(flushCtx); err != nil {
		logger.Error("cache flush on shutdown failed", "error", err)
	}

	logger.Info("data engine stopped")
}

// buildCache constructs the configured cache backend.
func buildCache(ctx context.Context, cfg *config.EngineConfig, logger *slog.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemory(), nil
	case "postgres":
		db := cfg.Cache.Postgres
		connString := fmt.Sprintf(
			"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d pool_min_conns=%d",
			db.Host, db.Port, db.Name, db.User, db.Password, db.SSLMode, db.MaxConns, db.MinConns,
		)
		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return cache.NewPostgres(pool, cache.PostgresConfig{
			BatchSize:     cfg.Cache.BatchSize,
			FlushInterval: cfg.Cache.FlushInterval,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// engineConfig converts the YAML-backed options into the engine's
// immutable Config.
func engineConfig(cfg *config.EngineConfig) engine.Config {
	external := make([]identifiers.ClientId, 0, len(cfg.Engine.ExternalClients))
	for _, id := range cfg.Engine.ExternalClients {
		external = append(external, identifiers.NewClientId(id))
	}
	return engine.Config{
		TimeBarsBuildWithNoUpdates: cfg.Engine.TimeBarsBuildWithNoUpdates,
		TimeBarsTimestampOnClose:   cfg.Engine.TimeBarsTimestampOnClose,
		TimeBarsIntervalType:       cfg.Engine.TimeBarsIntervalType,
		ValidateDataSequence:       cfg.Engine.ValidateDataSequence,
		BufferDeltas:               cfg.Engine.BufferDeltas,
		ExternalClients:            external,
		Debug:                      cfg.Engine.Debug,
	}
}
