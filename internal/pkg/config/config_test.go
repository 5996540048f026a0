package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "sweetshop", cfg.Mongo.Database)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)

	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.DefaultSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":          "8080",
		"JWT_SECRET":    "hunter2",
		"STORE_DRIVER":  "Memory",
		"REDIS_ENABLED": "false",
		"CACHE_TTL":     "1m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "hunter2", cfg.JWTSecret)
	assert.False(t, cfg.DefaultSecret)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
}

func TestLoad_ProductionSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"unset", "", true},
		{"default", DefaultJWTSecret, true},
		{"custom", "a-real-secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{"ENV": "production"}
			if tt.secret != "" {
				env["JWT_SECRET"] = tt.secret
			}

			cfg, err := load(context.Background(), envconfig.MapLookuper(env))
			if tt.wantErr {
				assert.ErrorIs(t, err, errProductionSecret)
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.IsProduction())
			assert.Equal(t, tt.secret, cfg.JWTSecret)
		})
	}
}

func TestLoad_UnknownStoreDriver(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"STORE_DRIVER": "postgres"}))
	assert.Error(t, err)
}
