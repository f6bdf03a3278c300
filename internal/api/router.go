package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventreg/registration-system/internal/api/handler"
	"github.com/eventreg/registration-system/internal/api/middleware"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil when the service runs without Redis.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	dispatcher handler.UpdateDispatcher,
	dedup handler.DedupChecker,
	webhookSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("registration"))

	// --- Webhook ingestion (shared-secret guarded) ---
	webhookHandler := handler.NewWebhookHandler(dispatcher, dedup, log)
	e.POST("/webhook", webhookHandler.Receive, middleware.WebhookSecret(webhookSecret))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
