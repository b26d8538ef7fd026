// Package config loads per-service configuration from ASLY_-prefixed
// environment variables and optional YAML files.
package config

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const envPrefix = "ASLY"

const minSecretLen = 32

// Server holds the settings every service shares.
type Server struct {
	Port            string        `usage:"HTTP listen port"`
	LogLevel        string        `default:"info" usage:"zap log level"`
	ShutdownTimeout time.Duration `default:"10s" usage:"graceful shutdown limit"`
	Metrics         Metrics
}

type Metrics struct {
	Enabled bool   `default:"true" usage:"expose /metrics"`
	Token   string `usage:"bearer token required by /metrics"`
}

type Catalog struct {
	HTTP        Server `env:"HTTP" yaml:"http"`
	DatabaseURL string `env:"DATABASE_URL" usage:"PostgreSQL URL; empty serves the built-in seed catalog"`
	PageSize    int    `default:"12" usage:"default products per page"`
	MaxPageSize int    `default:"48" usage:"largest page_size a client may request"`
}

type Auth struct {
	HTTP       Server        `env:"HTTP" yaml:"http"`
	JWTSecret  string        `env:"JWT_SECRET" usage:"HS256 signing secret"`
	TokenTTL   time.Duration `default:"24h" usage:"session token lifetime"`
	LoginDelay time.Duration `default:"1s" usage:"simulated login latency"`
	SweepEvery time.Duration `default:"10m" usage:"interval between expired session sweeps"`
	Mode       string        `default:"mock" usage:"authenticator: mock or accounts"`
	// Accounts are "email:bcrypt-hash" pairs used by the accounts authenticator.
	Accounts    []string `usage:"demo accounts for mode=accounts"`
	LoginLimit  int      `default:"5" usage:"login attempts per IP per minute"`
	DatabaseURL string   `env:"DATABASE_URL" usage:"PostgreSQL URL for sessions; empty keeps them in memory"`
}

type Cart struct {
	HTTP           Server        `env:"HTTP" yaml:"http"`
	CatalogURL     string        `env:"CATALOG_URL" default:"http://localhost:8082" usage:"catalog service base URL"`
	CatalogTimeout time.Duration `default:"3s" usage:"catalog request timeout"`
	RedisURL       string        `env:"REDIS_URL" usage:"redis URL; empty keeps carts in memory"`
	CartTTL        time.Duration `default:"720h" usage:"idle cart lifetime in redis"`
	JWTSecret      string        `env:"JWT_SECRET" usage:"HS256 secret shared with auth"`
	KafkaBrokers   []string      `usage:"kafka brokers for cart events; empty disables publishing"`
	KafkaTopic     string        `default:"cart-events" usage:"cart events topic"`
}

type Gateway struct {
	HTTP       Server `env:"HTTP" yaml:"http"`
	JWTSecret  string `env:"JWT_SECRET" usage:"HS256 secret shared with auth"`
	AuthURL    string `env:"AUTH_URL" default:"http://auth:8081"`
	CatalogURL string `env:"CATALOG_URL" default:"http://catalog:8082"`
	CartURL    string `env:"CART_URL" default:"http://cart:8083"`
}

// Load fills cfg from files, then environment. defaultPort is used when
// neither ASLY_HTTP_PORT nor the platform PORT variable is set.
func Load(cfg any, defaultPort string) error {
	loader := aconfig.LoaderFor(cfg, aconfig.Config{
		EnvPrefix:          envPrefix,
		SkipFlags:          true,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              []string{"config.yaml", "/etc/asly/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return errors.Wrap(err, "load config")
	}

	if s := serverOf(cfg); s != nil {
		s.applyPlatformDefaults(defaultPort)
	}
	return nil
}

// applyPlatformDefaults honours the bare PORT variable that hosting platforms set.
func (s *Server) applyPlatformDefaults(defaultPort string) {
	if s.Port != "" {
		return
	}
	if v := os.Getenv("PORT"); v != "" {
		s.Port = v
		return
	}
	s.Port = defaultPort
}

func (s Server) Addr() string { return ":" + s.Port }

func serverOf(cfg any) *Server {
	switch c := cfg.(type) {
	case *Catalog:
		return &c.HTTP
	case *Auth:
		return &c.HTTP
	case *Cart:
		return &c.HTTP
	case *Gateway:
		return &c.HTTP
	default:
		return nil
	}
}

// CheckSecret enforces the minimum signing secret length.
func CheckSecret(secret string) error {
	if len(secret) < minSecretLen {
		return errors.Errorf("jwt secret is required and must be at least %d chars", minSecretLen)
	}
	return nil
}
