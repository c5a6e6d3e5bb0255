// Command storecached runs the storefront cache service. All components are
// constructed here, once, and handed down explicitly; nothing reaches for a
// process-wide cache instance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dnery/storecache/api"
	"github.com/dnery/storecache/cache"
	"github.com/dnery/storecache/cache/memory"
	"github.com/dnery/storecache/catalog"
	catalogpg "github.com/dnery/storecache/catalog/postgres"
	"github.com/dnery/storecache/config"
	pgdb "github.com/dnery/storecache/db/sql/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*configPath, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("storecached exited", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store := memory.New(memory.Options{
		DefaultWindow: cfg.Cache.DefaultWindow.Std(),
		SweepInterval: cfg.Cache.SweepInterval.Std(),
		OnEvict: func(key string) {
			logger.Debug("cache entry expired", zap.String("key", key))
		},
	})
	defer func() { _ = store.Close() }()

	cacheSvc := cache.NewService(cache.NewProvider(store),
		cache.WithLogger(logger),
		cache.WithDefaultTTL(cfg.Cache.DefaultTTL.Std()),
	)

	var source catalog.Source
	if dsn := cfg.Catalog.PostgresDSN; dsn != "" {
		db, err := pgdb.Open(ctx, pgdb.WithDSN(dsn))
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := catalogpg.Migrate(ctx, db); err != nil {
			return err
		}
		source = catalogpg.NewProductSource(db)
		logger.Info("catalog source: postgres")
	} else {
		source = catalog.NewSimulatedSource(cfg.Catalog.SimulatedSize, cfg.Catalog.SimulatedSeed)
		logger.Info("catalog source: simulated", zap.Int("products", cfg.Catalog.SimulatedSize))
	}

	handler := api.NewHandler(catalog.NewService(cacheSvc, source), cacheSvc, logger, cfg.Admin.TokenHash)
	server := api.NewServer(handler,
		api.WithAddress(cfg.Server.Address),
		api.WithTimeouts(cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std()),
		api.WithShutdownTimeout(cfg.Server.ShutdownTimeout.Std()),
		api.WithLogger(logger),
	)

	return server.Start(ctx)
}
