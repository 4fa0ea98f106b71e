package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/talentvault/talentvault/internal/account"
	"github.com/talentvault/talentvault/internal/app"
	"github.com/talentvault/talentvault/internal/auth"
	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/importer"
	"github.com/talentvault/talentvault/internal/observability"
	"github.com/talentvault/talentvault/internal/person"
	"github.com/talentvault/talentvault/internal/platform/cache"
	"github.com/talentvault/talentvault/internal/platform/db"
	"github.com/talentvault/talentvault/internal/shared"
	"github.com/talentvault/talentvault/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "talentvault_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	accountRepo := account.NewRepository(dbpool)
	accountService := account.NewService(accountRepo, auditLogger)

	authService := auth.NewService(accountRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	capabilityMW := capability.Middleware{Resolver: accountService, Logger: logger}

	personRepo := person.NewRepository(dbpool)
	personService := person.NewService(personRepo, auditLogger)

	dimensionRepo := dimension.NewRepository(dbpool)
	dimensionService := dimension.NewService(dimensionRepo, auditLogger)

	importerRepo := importer.NewRepository(dbpool)
	importerService := importer.NewService(importerRepo, auditLogger)

	metrics := observability.NewMetrics()

	personHandler := person.NewHandler(logger, personService, dimensionService)
	dimensionHandler := dimension.NewHandler(logger, dimensionService)
	importHandler := importer.NewHandler(logger, importerService)
	accountHandler := account.NewHandler(logger, accountService)
	capabilityHandler := capability.NewHandler()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		PersonHandler:        personHandler,
		DimensionHandler:     dimensionHandler,
		ImportHandler:        importHandler,
		AccountHandler:       accountHandler,
		CapabilityHandler:    capabilityHandler,
		JobHandler:           jobHandler,
		CapabilityMiddleware: capabilityMW,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
