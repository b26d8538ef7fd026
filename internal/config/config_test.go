package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CartDefaultsAndEnv(t *testing.T) {
	t.Setenv("ASLY_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ASLY_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ASLY_JWT_SECRET", strings.Repeat("c", 32))
	t.Setenv("PORT", "")

	var cfg Cart
	require.NoError(t, Load(&cfg, "8083"))

	assert.Equal(t, "8083", cfg.HTTP.Port)
	assert.Equal(t, ":8083", cfg.HTTP.Addr())
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "cart-events", cfg.KafkaTopic)
	assert.Equal(t, 720*time.Hour, cfg.CartTTL)
	assert.NoError(t, CheckSecret(cfg.JWTSecret))
	assert.True(t, cfg.HTTP.Metrics.Enabled)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9999")

	var cfg Catalog
	require.NoError(t, Load(&cfg, "8082"))

	assert.Equal(t, "9999", cfg.HTTP.Port)
	assert.Equal(t, 12, cfg.PageSize)
}

func TestLoad_ExplicitPortWins(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ASLY_HTTP_PORT", "7000")

	var cfg Auth
	require.NoError(t, Load(&cfg, "8081"))

	assert.Equal(t, "7000", cfg.HTTP.Port)
	assert.Equal(t, "mock", cfg.Mode)
	assert.Equal(t, time.Second, cfg.LoginDelay)
	assert.Equal(t, 10*time.Minute, cfg.SweepEvery)
}

func TestCheckSecret(t *testing.T) {
	require.Error(t, CheckSecret("short"))
	require.NoError(t, CheckSecret(strings.Repeat("x", 32)))
}

func TestLoad_GatewaySecretAndURLs(t *testing.T) {
	t.Setenv("ASLY_JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("ASLY_CART_URL", "http://cart.internal:8083")
	t.Setenv("ASLY_HTTP_METRICS_TOKEN", "scrape")

	var cfg Gateway
	require.NoError(t, Load(&cfg, "8080"))

	assert.NoError(t, CheckSecret(cfg.JWTSecret))
	assert.Equal(t, "http://cart.internal:8083", cfg.CartURL)
	assert.Equal(t, "http://auth:8081", cfg.AuthURL)
	assert.Equal(t, "scrape", cfg.HTTP.Metrics.Token)
}
