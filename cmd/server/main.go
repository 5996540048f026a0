// @title                       Sweet Shop API
// @version                     1.0
// @description                 Inventory and point-of-sale API for a sweet shop.
// @host                        localhost:5000
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/api"
	"github.com/sweetshop/sweetshop-api/internal/api/handler"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/core/service"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
	mongostore "github.com/sweetshop/sweetshop-api/internal/infrastructure/db/mongo"
	rediscache "github.com/sweetshop/sweetshop-api/internal/infrastructure/db/redis"
	"github.com/sweetshop/sweetshop-api/internal/pkg/config"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
	"github.com/sweetshop/sweetshop-api/pkg/logger"
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sweetshop-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.DefaultSecret {
		log.Warn().Msg("JWT_SECRET is not set; using the insecure development secret")
	}

	health := make(map[string]handler.Pinger)

	// --- Stores ---
	var (
		sweetRepo ports.SweetRepository
		userRepo  ports.UserRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using the in-memory store; data is lost on restart")
		sweetRepo = memory.NewSweetRepository()
		userRepo = memory.NewUserRepository()

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()

		sweets := mongostore.NewSweetRepository(db)
		users := mongostore.NewUserRepository(db)
		if err := sweets.EnsureIndexes(ctx); err != nil {
			return err
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			return err
		}
		sweetRepo, userRepo = sweets, users
		health["mongodb"] = mongostore.NewPinger(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	// --- List cache (optional) ---
	var listCache ports.SweetListCache
	if cfg.Redis.Enabled {
		rdb, err := rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable; list cache disabled")
		} else {
			defer rdb.Close()
			listCache = rediscache.NewListCache(rdb, cfg.Redis.CacheTTL)
			health["redis"] = rediscache.NewPinger(rdb)
		}
	}

	// --- Services ---
	v := validation.New()
	tokens, err := service.NewTokenService(&service.TokenConfig{Secret: cfg.JWTSecret})
	if err != nil {
		return err
	}
	authService := service.NewAuthService(userRepo, tokens, v, log.With().Str("component", "auth").Logger())
	sweetService := service.NewSweetService(sweetRepo, listCache, v, log.With().Str("component", "inventory").Logger())

	e := api.NewRouter(api.Deps{
		Logger:    log,
		Validator: v,
		Tokens:    tokens,
		Auth:      authService,
		Sweets:    sweetService,
		Health:    health,
	})

	// --- Serve until a signal arrives ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
