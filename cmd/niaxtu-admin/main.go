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

	"github.com/niaxtu/niaxtu-admin/internal/app"
	"github.com/niaxtu/niaxtu-admin/internal/console"
	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	"github.com/niaxtu/niaxtu-admin/internal/gate"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/observability"
	"github.com/niaxtu/niaxtu-admin/internal/platform/cache"
	"github.com/niaxtu/niaxtu-admin/internal/session"
	"github.com/niaxtu/niaxtu-admin/internal/shared"
	"github.com/niaxtu/niaxtu-admin/internal/view"
	"github.com/niaxtu/niaxtu-admin/jobs"
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

	// Redis backs visits, the credential store and the stats cache;
	// without it the console cannot run.
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

	visits := shared.NewVisitManager(redisClient, "niaxtu_visit", cfg.VisitTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	apiClient := niaxtu.NewClientWithTimeout(cfg.APIBaseURL, cfg.APITimeout)

	creds := credstore.NewRedis(redisClient, "niaxtu")
	sessions := session.NewManager(apiClient, creds, logger, session.Options{
		TrustCachedSession: cfg.TrustCachedSession,
	})
	if err := sessions.Initialize(ctx); err != nil {
		logger.Error("load cached session", slog.Any("error", err))
		os.Exit(1)
	}
	if sessions.IsAuthenticated() && !cfg.TrustCachedSession {
		if ok, err := sessions.VerifyToken(ctx); err != nil {
			logger.Warn("verify cached session", slog.Any("error", err))
		} else if !ok {
			logger.Info("cached session rejected by the API")
		}
	}

	metrics := observability.NewMetrics()
	stats := console.NewStatsSource(apiClient, redisClient, cfg.StatsCacheTTL, logger)

	gateMW := gate.Middleware{Sessions: sessions, Templates: templates, CSRF: csrf, Logger: logger}
	consoleHandler := console.NewHandler(logger, sessions, apiClient, stats, templates, csrf, gateMW)
	consoleHandler.SetMetrics(metrics)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	// Ask the worker for an immediate re-check of whatever token we
	// just loaded from the store.
	if sessions.IsAuthenticated() {
		jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err == nil {
			if _, err := jobClient.EnqueueVerifySession(ctx); err != nil {
				logger.Warn("enqueue session verification", slog.Any("error", err))
			}
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Visits:  visits,
		CSRF:    csrf,
		Console: consoleHandler,
		Jobs:    jobHandler,
		Metrics: metrics,
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
