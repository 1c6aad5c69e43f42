package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/fueldesk/fueldesk/internal/app"
	"github.com/fueldesk/fueldesk/internal/billing"
	jobmetrics "github.com/fueldesk/fueldesk/internal/jobs"
	"github.com/fueldesk/fueldesk/internal/platform/cache"
	"github.com/fueldesk/fueldesk/internal/platform/db"
	"github.com/fueldesk/fueldesk/jobs"
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
		logger.Warn("redis unavailable, warmup dedup disabled", slog.Any("error", err))
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

	metrics := jobmetrics.NewMetrics(nil)
	warmupJob := jobs.NewLedgerWarmupHandler(billingService, redisClient, logger, metrics)

	// Cron task with a zero payload warms the month that just closed.
	warmupTask, err := jobs.NewLedgerWarmupTask(jobs.LedgerWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 1 * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
