package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ersuite/reimbursement-api/internal/api"
	"github.com/ersuite/reimbursement-api/internal/core/service"
	"github.com/ersuite/reimbursement-api/internal/infrastructure/config"
	mongorepo "github.com/ersuite/reimbursement-api/internal/infrastructure/db/mongo"
	redisrepo "github.com/ersuite/reimbursement-api/internal/infrastructure/db/redis"
	"github.com/ersuite/reimbursement-api/internal/infrastructure/queue"
	"github.com/ersuite/reimbursement-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	userRepo := mongorepo.NewUserRepository(db)
	reimbRepo := mongorepo.NewReimbRepository(db)
	auditRepo := mongorepo.NewAuditRepository(db)
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		reimbRepo.EnsureIndexes,
		auditRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Redis ---
	rdb, err := redisrepo.Connect(ctx, redisrepo.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Decision audit pipeline ---
	dedup := redisrepo.NewDedupChecker(rdb)
	auditService := service.NewAuditService(auditRepo, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.RouterDeps{
		DB:           db,
		Redis:        rdb,
		Recorder:     dispatcher,
		AuditService: auditService,
		JWTSecret:    cfg.JWTSecret,
		Logger:       log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
