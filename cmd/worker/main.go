package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/aeronaa/settlement/internal/app"
	"github.com/aeronaa/settlement/internal/booking"
	"github.com/aeronaa/settlement/internal/invoice"
	jobmetrics "github.com/aeronaa/settlement/internal/jobs"
	"github.com/aeronaa/settlement/internal/platform/cache"
	"github.com/aeronaa/settlement/internal/platform/db"
	"github.com/aeronaa/settlement/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	commissionRate, err := cfg.ParseCommissionRate()
	if err != nil {
		logger.Error("commission rate", slog.Any("error", err))
		os.Exit(1)
	}

	bookingRepo := booking.NewRepository(pool)
	bookingService := booking.NewService(bookingRepo)

	buildLock := invoice.NewBuildLock(redisClient, cfg.BuildLockTTL)
	invoiceRepo := invoice.NewRepository(pool)
	invoiceService := invoice.NewService(invoiceRepo, bookingService, buildLock, commissionRate, cfg.DefaultCurrency)

	periodCloseJob := jobs.NewPeriodCloseJob(bookingService, invoiceService, logger, jobmetrics.NewMetrics(nil))

	periodCloseTask, err := jobs.NewPeriodCloseTask(jobs.PeriodClosePayload{})
	if err != nil {
		logger.Error("build period close task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPeriodClose, Handler: periodCloseJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 1 * *", Task: periodCloseTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
