package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction = "production"

	// DefaultJWTSecret is the well-known development secret. It is refused
	// in production.
	DefaultJWTSecret = "sweet-shop-secret-key-change-in-production"

	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var errProductionSecret = errors.New("config: JWT_SECRET must be set to a non-default value in production")

type Config struct {
	Port            string        `env:"PORT,             default=5000"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	StoreDriver     string        `env:"STORE_DRIVER,     default=mongo"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig

	// DefaultSecret is true when JWT_SECRET was unset and DefaultJWTSecret
	// is in use.
	DefaultSecret bool
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=sweetshop"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,  default=true"`
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,      default=30s"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.StoreDriver != StoreMongo && cfg.StoreDriver != StoreMemory {
		return nil, fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.StoreDriver)
	}

	switch {
	case cfg.IsProduction() && (cfg.JWTSecret == "" || cfg.JWTSecret == DefaultJWTSecret):
		return nil, errProductionSecret
	case cfg.JWTSecret == "":
		cfg.JWTSecret = DefaultJWTSecret
		cfg.DefaultSecret = true
	}

	return &cfg, nil
}
