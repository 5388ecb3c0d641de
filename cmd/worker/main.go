// Package main is the entry point for the Smart LMS Platform worker.
//
// The worker owns background reconciliation: it periodically sweeps for
// (user, course) pairs whose progress snapshot lags behind the learning
// event stream and recomputes them. This is what makes ingestion-time
// recompute failures harmless.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mdsadique5522/smart-lms-platform/config"
	"github.com/Mdsadique5522/smart-lms-platform/internal/application/command"
	"github.com/Mdsadique5522/smart-lms-platform/internal/application/eventhandler"
	"github.com/Mdsadique5522/smart-lms-platform/internal/application/query"
	"github.com/Mdsadique5522/smart-lms-platform/internal/infrastructure/messaging"
	"github.com/Mdsadique5522/smart-lms-platform/internal/infrastructure/persistence/postgres"
	"github.com/Mdsadique5522/smart-lms-platform/internal/infrastructure/persistence/redis"
	"github.com/Mdsadique5522/smart-lms-platform/internal/infrastructure/scheduler"
	"github.com/Mdsadique5522/smart-lms-platform/internal/infrastructure/scheduler/jobs"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/logger"
	"github.com/Mdsadique5522/smart-lms-platform/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	appLog := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})

	log.Info("starting Smart LMS Platform worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"reconcile_interval", cfg.Scheduler.ReconcileInterval.String(),
	)

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled, nothing for the worker to do")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// The database may still be coming up during a rolling deploy.
	if err := pingWithRetry(ctx, dbConn, log); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// The worker needs the schema too; migrations are idempotent.
	if cfg.Database.AutoMigrate {
		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var snapshotCache query.SnapshotCache

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureCacheSnapshots, nil) {
		log.Info("connecting to Redis...")
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}
		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, cache invalidation disabled", "error", err)
		} else {
			defer redisCache.Close()
			snapshotCache = redis.NewSnapshotCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES AND EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	eventRepo := postgres.NewEventRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)

	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// Reconciliation rewrites snapshots, so stale cache entries must go.
	if snapshotCache != nil {
		invalidateHandler := eventhandler.NewOnProgressRecomputedHandler(snapshotCache, log)
		if err := eventBus.Subscribe(invalidateHandler.EventType(), invalidateHandler.Handle); err != nil {
			return fmt.Errorf("failed to subscribe cache invalidation handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCHEDULER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing scheduler...")

	recomputeCmd := command.NewRecomputeProgressHandler(courseRepo, eventRepo, snapshotRepo, eventBus, appLog)

	reconcileJob := jobs.NewReconcileSnapshotsJob(
		eventRepo,
		recomputeCmd,
		eventBus,
		log,
		jobs.ReconcileConfig{
			BatchSize: cfg.Scheduler.ReconcileBatchSize,
			Timeout:   cfg.Scheduler.JobTimeout,
		},
	)

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	if err := sched.Register(reconcileJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ReconcileInterval)); err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Smart LMS Platform worker is running",
		"jobs", len(sched.ListJobs()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	if err := sched.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
		return err
	}

	// Event bus and database close via defers.

	log.Info("shutdown completed successfully")
	return nil
}

// pingWithRetry verifies database connectivity with exponential backoff.
func pingWithRetry(ctx context.Context, dbConn *postgres.Connection, log *slog.Logger) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		return dbConn.Ping(ctx)
	},
		retry.WithMaxAttempts(5),
		retry.WithInitialDelay(500*time.Millisecond),
		retry.WithMaxDelay(5*time.Second),
		retry.WithRetryIf(func(error) bool { return true }),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("database not ready, retrying",
				"attempt", attempt,
				"delay", delay.String(),
				"error", err,
			)
		}),
	)
}

// setupLogger configures process-wide structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
