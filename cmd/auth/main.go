package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"AslyStore/internal/auth"
	"AslyStore/internal/config"
	"AslyStore/pkg/kit"
)

const service = "auth"

func main() {
	var cfg config.Auth
	if err := config.Load(&cfg, "8081"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.HTTP.LogLevel)

	err := run(cfg, log)
	if err != nil {
		log.Error("auth service stopped", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Auth, log *zap.Logger) error {
	if err := config.CheckSecret(cfg.JWTSecret); err != nil {
		return err
	}

	authn, err := auth.NewAuthenticator(cfg.Mode, cfg.Accounts)
	if err != nil {
		return err
	}
	if cfg.Mode == "" || cfg.Mode == auth.ModeMock {
		log.Warn("mock authenticator accepts any well formed email; not for production")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := kit.NewRegistry()
	sessions := auth.NewManager(store, authn, auth.ManagerOpts{
		Delay:   cfg.LoginDelay,
		TTL:     cfg.TokenTTL,
		Log:     log,
		Metrics: auth.NewMetrics(reg),
	})
	go sessions.RunSweeper(ctx, cfg.SweepEvery)

	s := &auth.Server{
		Log:      log,
		Sessions: sessions,
		JWT:      auth.NewTokenMaker(cfg.JWTSecret),
		TokenTTL: cfg.TokenTTL,
	}

	h := auth.NewHandler(s, auth.HTTPDeps{
		Log: log,
		MetricsDeps: kit.MetricsDeps{
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.HTTP.Metrics.Enabled,
			MetricsToken:   cfg.HTTP.Metrics.Token,
		},
		LoginLimit: cfg.LoginLimit,
	})

	return kit.RunHTTPServer(cfg.HTTP.Addr(), h, log, cfg.HTTP.ShutdownTimeout)
}

func openStore(ctx context.Context, cfg config.Auth) (auth.SessionStore, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return auth.NewStore(), nil, nil
	}

	db, err := kit.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	store := auth.NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}
