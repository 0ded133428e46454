package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workforce/internal/cache"
	"workforce/internal/config"
	"workforce/internal/database"
	"workforce/internal/documents"
	"workforce/internal/handlers"
	"workforce/internal/jobs"
	"workforce/internal/log"
	"workforce/internal/mailer"
	"workforce/internal/metrics"
	"workforce/internal/repository"
	"workforce/internal/security"
	"workforce/internal/server"
	"workforce/internal/service"
	"workforce/internal/storage"
	"workforce/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	if cfg.Postgres.AutoMigrate {
		if err := database.ApplyMigrations(cfg.Postgres.DSN); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	users := repository.NewUserRepository(dbPool)
	timestamps := repository.NewTimestampRepository(dbPool)
	letters := repository.NewLetterRepository(dbPool)
	emails := repository.NewEmailRepository(dbPool)

	tokens := security.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.JWTTTL)
	maxUpload := cfg.HTTP.MaxUploadBytes

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:         logger,
		Environment: cfg.Environment,
		Tokens:      tokens,
		UserLookup:  users,
		Auth:        service.NewAuthService(users, objectStore, tokens, maxUpload, logger),
		Users:       service.NewUserService(users, timestamps, objectStore, cfg.Retention.RequestWindow, maxUpload, m, logger),
		Timestamps:  service.NewTimestampService(timestamps, objectStore, cfg.Retention.Timestamp, maxUpload, m, logger),
		Letters:     service.NewLetterService(letters),
		Documents:   service.NewDocumentService(
			users, emails, mailer.New(cfg.Mail), documents.Filler{},
			cfg.Documents.IDTemplatePath, cfg.Documents.IDValidityYears, m, logger,
		),
		RateLimit:      cfg.RateLimit,
		MaxUploadBytes: maxUpload,
		Checks:         map[string]handlers.HealthCheck{
			"database": dbPool.Ping,
			"cache":    cache.Ping(redisClient),
			"storage":  objectStore.Ping,
		},
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, m, registry)

	var dispatcher jobs.Dispatcher = jobs.StreamDispatcher{Client: redisClient, Stream: cfg.Redis.Stream}
	if cfg.Jobs.Mode == "inline" {
		cleanup := service.NewCleanupService(timestamps, users, emails, objectStore, cfg.Retention.EmailLog, m, logger)
		dispatcher = jobs.DispatchFunc(tasks.NewProcessor(cleanup, m, logger).Run)
	}
	scheduler := jobs.NewScheduler(cfg.Jobs, dispatcher, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
