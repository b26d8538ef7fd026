package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"AslyStore/internal/config"
	"AslyStore/internal/gateway"
	"AslyStore/pkg/kit"
)

const service = "gateway"

func main() {
	var cfg config.Gateway
	if err := config.Load(&cfg, "8080"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.HTTP.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := config.CheckSecret(cfg.JWTSecret); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	deps := gateway.Deps{
		JWTSecret:  cfg.JWTSecret,
		AuthURL:    cfg.AuthURL,
		CatalogURL: cfg.CatalogURL,
		CartURL:    cfg.CartURL,
	}

	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log: log,
		MetricsDeps: kit.MetricsDeps{
			Service:        service,
			Registry:       kit.NewRegistry(),
			MetricsEnabled: cfg.HTTP.Metrics.Enabled,
			MetricsToken:   cfg.HTTP.Metrics.Token,
		},
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(cfg.HTTP.Addr(), h, log, cfg.HTTP.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
