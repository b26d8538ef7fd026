package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"AslyStore/internal/catalog"
	"AslyStore/internal/config"
	"AslyStore/pkg/kit"
)

const service = "catalog"

func main() {
	var cfg config.Catalog
	if err := config.Load(&cfg, "8082"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.HTTP.LogLevel)
	defer func() { _ = log.Sync() }()

	store, err := openStore(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("init catalog store failed", zap.Error(err))
	}

	s := &catalog.Server{
		Store:       store,
		Log:         log,
		PageSize:    cfg.PageSize,
		MaxPageSize: cfg.MaxPageSize,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log: log,
		MetricsDeps: kit.MetricsDeps{
			Service:        service,
			Registry:       kit.NewRegistry(),
			MetricsEnabled: cfg.HTTP.Metrics.Enabled,
			MetricsToken:   cfg.HTTP.Metrics.Token,
		},
	})

	if err := kit.RunHTTPServer(cfg.HTTP.Addr(), h, log, cfg.HTTP.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openStore serves the built-in catalog unless a database is configured. An
// empty products table is seeded on first start.
func openStore(ctx context.Context, cfg config.Catalog, log *zap.Logger) (catalog.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory seed catalog")
		return catalog.NewStore(), nil
	}

	db, err := kit.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	store := catalog.NewPostgresStore(db, log)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}

	n, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		seed := catalog.Seed()
		if err := store.Import(ctx, seed); err != nil {
			return nil, err
		}
		log.Info("seeded catalog", zap.Int("products", len(seed)))
	}
	return store, nil
}
