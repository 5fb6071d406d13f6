package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/rueidis"
	"gorm.io/gorm"

	config "task-marketplace.com/task-marketplace/internal/configs"
	"task-marketplace.com/task-marketplace/internal/gateway"
	"task-marketplace.com/task-marketplace/internal/locks"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
	"task-marketplace.com/task-marketplace/internal/services"
	"task-marketplace.com/task-marketplace/internal/storage"
)

// app holds every long-lived dependency the commands share.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB
	redis  rueidis.Client
	store  *repository.Store
	blobs  storage.Storage
	locker locks.Locker

	tasks       *services.TaskService
	requests    *services.RequestService
	transitions *services.TransitionService
	disputes    *services.DisputeService
	payments    *services.PaymentService
	sweep       *services.SweepService
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	db, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := config.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	var locker locks.Locker = locks.NewMemoryLocker()
	if redisClient != nil {
		locker = locks.NewRedisLocker(redisClient, "marketplace:")
	} else {
		logger.Warn("redis not configured; locks are local to this process")
	}

	blobs, err := config.NewStorage(ctx, cfg.StorageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var provider gateway.Provider
	if cfg.PaymentProvider == "http" {
		provider = gateway.NewHTTPProvider(cfg.PaymentBaseURL, cfg.PaymentSecretKey, cfg.PaymentReturnURL, cfg.PaymentTimeout)
	} else {
		provider = gateway.NewSandboxProvider("http://" + cfg.AppURL())
	}

	store := repository.NewStore(db)
	ledger := services.NewLedgerService(logger.With("component", "ledger"))
	disputes := services.NewDisputeService(store, ledger, logger.With("component", "disputes"))

	a := &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		store:       store,
		blobs:       blobs,
		locker:      locker,
		tasks:       services.NewTaskService(store.Tasks, logger.With("component", "tasks")),
		requests:    services.NewRequestService(store.Assignments),
		transitions: services.NewTransitionService(store, ledger, blobs, cfg.Location(), logger.With("component", "transitions")),
		disputes:    disputes,
		payments: services.NewPaymentService(
			store, ledger, provider, locker, cfg.RedisLockTTL, cfg.PaymentWebhookSecret,
			logger.With("component", "payments"),
		),
		sweep: services.NewSweepService(store.Disputes, disputes, locker, services.SweepConfig{
			Schedule:    cfg.SweepSchedule,
			StaleAfter:  cfg.DisputeStaleAfter,
			ItemTimeout: cfg.SweepItemTimeout,
			BatchSize:   cfg.SweepBatchSize,
			LeaseTTL:    sweepLeaseTTL(cfg),
		}, logger.With("component", "sweep")),
	}
	return a, nil
}

// sweepLeaseTTL outlives one full batch so a slow sweep keeps its lease.
func sweepLeaseTTL(cfg config.Config) time.Duration {
	ttl := cfg.SweepItemTimeout * time.Duration(cfg.SweepBatchSize)
	if ttl < cfg.RedisLockTTL {
		return cfg.RedisLockTTL
	}
	return ttl
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
