package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventreg/registration-system/internal/api"
	"github.com/eventreg/registration-system/internal/api/handler"
	"github.com/eventreg/registration-system/internal/core/ports"
	"github.com/eventreg/registration-system/internal/core/service"
	"github.com/eventreg/registration-system/internal/infrastructure/config"
	"github.com/eventreg/registration-system/internal/infrastructure/db/memory"
	mongodb "github.com/eventreg/registration-system/internal/infrastructure/db/mongo"
	redisdb "github.com/eventreg/registration-system/internal/infrastructure/db/redis"
	"github.com/eventreg/registration-system/internal/infrastructure/export"
	"github.com/eventreg/registration-system/internal/infrastructure/queue"
	"github.com/eventreg/registration-system/internal/infrastructure/transport"
	"github.com/eventreg/registration-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "registration-bot",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB (participant store) ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}

	store := mongodb.NewParticipantRepository(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis (sessions + update dedup), in-memory fallback ---
	var sessions ports.SessionStore
	var dedup handler.DedupChecker

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-process session state")
		rdb = nil
		sessions = memory.NewSessionStore()
		dedup = memory.NewDedupChecker()
	} else {
		sessions = redisdb.NewSessionStore(rdb)
		dedup = redisdb.NewDedupChecker(rdb)
	}

	// --- Core services ---
	registration := service.NewRegistration(store, sessions, log)
	admin := service.NewAdmin(store, sessions, export.NewExcelExporter(), cfg.AdminIDs, cfg.ResetPassword, log)
	router := service.NewRouter(registration, admin, sessions, log)

	sender := transport.NewClient(cfg.BotAPIBase)
	processor := service.NewProcessor(router, sender, log)

	dispatcher := queue.NewDispatcher(0, processor, log)
	dispatcher.Start(ctx)

	// --- HTTP surface ---
	e := api.NewRouter(db, rdb, dispatcher, dedup, cfg.WebhookSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect failed")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}
}
