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

	"github.com/fueldesk/fueldesk/internal/app"
	"github.com/fueldesk/fueldesk/internal/billing"
	billinghttp "github.com/fueldesk/fueldesk/internal/billing/http"
	"github.com/fueldesk/fueldesk/internal/masterdata"
	"github.com/fueldesk/fueldesk/internal/observability"
	"github.com/fueldesk/fueldesk/internal/platform/cache"
	"github.com/fueldesk/fueldesk/internal/platform/db"
	"github.com/fueldesk/fueldesk/jobs"
	"github.com/fueldesk/fueldesk/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, ledger cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	billingRepo := billing.NewPGRepository(pool)
	billingService := billing.NewService(billingRepo, logger)
	if redisClient != nil {
		billingService.WithLedgerCache(billing.NewLedgerCache(redisClient, cfg.LedgerCacheTTL))
	}

	metrics := observability.NewMetrics()

	reportClient := report.NewClient(cfg.GotenbergURL, cfg.RenderTimeout)
	coordinator := billing.NewCoordinator(reportClient, cfg.RenderTimeout, logger).WithMetrics(metrics)

	billingHandler, err := billinghttp.NewHandler(logger, billingService, coordinator)
	if err != nil {
		logger.Error("init billing handler", slog.Any("error", err))
		os.Exit(1)
	}

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataService := masterdata.NewService(masterdataRepo).
		WithOrderRecordedHook(billinghttp.InvalidateReports)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	reportHandler := report.NewHandler(reportClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		BillingHandler:    billingHandler,
		MasterDataHandler: masterdataHandler,
		ReportHandler:     reportHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
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
