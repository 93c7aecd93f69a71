package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/api"
	"github.com/dialhub/callqueue/internal/config"
	"github.com/dialhub/callqueue/internal/db"
	"github.com/dialhub/callqueue/internal/metrics"
	"github.com/dialhub/callqueue/internal/phone"
	"github.com/dialhub/callqueue/internal/ratelimiter"
	"github.com/dialhub/callqueue/internal/repository"
	"github.com/dialhub/callqueue/internal/service"
	"github.com/dialhub/callqueue/internal/suppression"
	"github.com/dialhub/callqueue/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	queueRepo := repository.NewPgQueueRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	suppressionRepo := repository.NewPgSuppressionRepository(pool)
	jobRepo := repository.NewPgValidationJobRepository(pool)

	loader := suppression.NewLoader(suppressionRepo)
	resolver := phone.NewResolver(phone.PolicyFromName(cfg.PhonePolicy))
	limiter := ratelimiter.New(cfg.PullRatePerAgent)

	queueSvc := service.NewQueueService(queueRepo, contactRepo, loader, resolver, service.Options{
		LeaseDuration: cfg.LeaseDuration,
		PriorityBoost: cfg.PriorityBoost,
		PopulateLimit: cfg.DefaultPopulateLimit,
	}, logger)
	validationSvc := service.NewValidationService(jobRepo, queueRepo, logger)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	reclaimW := worker.NewReclaimWorker(queueRepo, cfg.ReclaimInterval, logger, func(count int) {
		m.LeasesReclaimed.Add(float64(count))
	})
	go reclaimW.Run(workerCtx)

	jobReclaimW := worker.NewJobReclaimWorker(jobRepo, validationSvc,
		cfg.JobReclaimInterval, cfg.JobOrphanTimeout, logger)
	go jobReclaimW.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(queueSvc, validationSvc, limiter, m, reg, pool, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// Stop accepting new HTTP requests, then stop the sweeps. In-flight
	// leases are safe to abandon: the reclaim sweep of the next process
	// picks them up after expiry.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	cancelWorkers()
	logger.Info("server stopped cleanly")
}
