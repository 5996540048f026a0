package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sweetshop/sweetshop-api/docs"
	"github.com/sweetshop/sweetshop-api/internal/api/handler"
	"github.com/sweetshop/sweetshop-api/internal/api/middleware"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/pkg/validation"
)

const (
	metricsSubsystem = "sweetshop"
	maxBodySize      = "1M"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Logger    zerolog.Logger
	Validator *validation.Validator
	Tokens    ports.TokenVerifier
	Auth      ports.AuthService
	Sweets    ports.SweetService
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(d.Validator)
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := middleware.Auth(d.Tokens)
	requireAdmin := middleware.RequireAdmin(d.Logger)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Inventory routes ---
	// Create and update are open to any authenticated user; delete and
	// restock are admin only.
	sweetHandler := handler.NewSweetHandler(d.Sweets)
	sweets := e.Group("/sweets", requireAuth)
	sweets.GET("", sweetHandler.List)
	sweets.GET("/search", sweetHandler.Search)
	sweets.POST("", sweetHandler.Create)
	sweets.GET("/:id", sweetHandler.Get)
	sweets.PUT("/:id", sweetHandler.Update)
	sweets.DELETE("/:id", sweetHandler.Delete, requireAdmin)
	sweets.POST("/:id/purchase", sweetHandler.Purchase)
	sweets.POST("/:id/restock", sweetHandler.Restock, requireAdmin)

	return e
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
