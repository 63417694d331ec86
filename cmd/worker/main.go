package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/niaxtu/niaxtu-admin/internal/app"
	"github.com/niaxtu/niaxtu-admin/internal/console"
	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	jobmetrics "github.com/niaxtu/niaxtu-admin/internal/jobs"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/platform/cache"
	"github.com/niaxtu/niaxtu-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	apiClient := niaxtu.NewClientWithTimeout(cfg.APIBaseURL, cfg.APITimeout)
	creds := credstore.NewRedis(redisClient, "niaxtu")
	metrics := jobmetrics.NewMetrics(nil)

	verifier := jobs.NewSessionVerifier(apiClient, creds, logger, metrics)
	stats := console.NewStatsSource(apiClient, redisClient, cfg.StatsCacheTTL, logger)
	warmer := jobs.NewStatsWarmer(stats, creds, logger, metrics)

	verifySpec := "@every " + cfg.VerifyInterval.String()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskVerifySession, Handler: verifier.Handle},
			{Type: jobs.TaskStatsWarmup, Handler: warmer.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: verifySpec, Task: jobs.NewVerifySessionTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
			{Spec: "*/10 * * * *", Task: jobs.NewStatsWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
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
