package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"AslyStore/internal/auth"
	"AslyStore/internal/cart"
	"AslyStore/internal/config"
	"AslyStore/pkg/kit"
)

const service = "cart"

func main() {
	var cfg config.Cart
	if err := config.Load(&cfg, "8083"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.HTTP.LogLevel)

	err := run(cfg, log)
	if err != nil {
		log.Error("cart service stopped", zap.Error(err))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource it opens and releases them before returning.
func run(cfg config.Cart, log *zap.Logger) error {
	if err := config.CheckSecret(cfg.JWTSecret); err != nil {
		return err
	}

	store, err := openStore(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn("close cart store", zap.Error(err))
			}
		}()
	}

	reg := kit.NewRegistry()
	listeners := []cart.Listener{cart.NewMetrics(reg).Observe}

	if len(cfg.KafkaBrokers) > 0 {
		pub := cart.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("close kafka publisher", zap.Error(err))
			}
		}()

		listeners = append(listeners, pub.Publish)
		log.Info("publishing cart events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	svc := cart.NewService(store, cart.NewCatalogClient(cfg.CatalogURL, cfg.CatalogTimeout), log, listeners...)

	h := cart.NewHandler(&cart.Server{Cart: svc, Log: log, JWT: auth.NewTokenMaker(cfg.JWTSecret)}, cart.HTTPDeps{
		Log: log,
		MetricsDeps: kit.MetricsDeps{
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.HTTP.Metrics.Enabled,
			MetricsToken:   cfg.HTTP.Metrics.Token,
		},
	})

	return kit.RunHTTPServer(cfg.HTTP.Addr(), h, log, cfg.HTTP.ShutdownTimeout)
}

func openStore(ctx context.Context, cfg config.Cart, log *zap.Logger) (cart.Store, error) {
	if cfg.RedisURL == "" {
		log.Info("keeping carts in memory")
		return cart.NewStore(), nil
	}
	return cart.NewRedisStore(ctx, cfg.RedisURL, cfg.CartTTL)
}
