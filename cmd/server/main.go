// Package main is the entry point for the Smart LMS Platform API server.
//
// The server owns the synchronous path: event ingestion, progress reads,
// dashboards, and course structure. Snapshot reconciliation runs in the
// separate worker binary.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries/Event Handlers)
// - Infrastructure: repositories, cache, messaging, scheduler
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
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
	httpserver "github.com/Mdsadique5522/smart-lms-platform/internal/interface/http"
	"github.com/Mdsadique5522/smart-lms-platform/internal/interface/http/handlers"
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
	_ = godotenv.Load() // .env is optional; real deployments use the environment

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

	log.Info("starting Smart LMS Platform API server",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

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

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var snapshotCache query.SnapshotCache
	var dashboardCache query.DashboardCache

	cacheEnabled := cfg.Features.IsEnabled(config.FeatureCacheSnapshots, nil)
	if !cfg.Redis.Disabled && cacheEnabled {
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
		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			snapshotCache = redis.NewSnapshotCache(redisCache)
			dashboardCache = redis.NewDashboardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	eventRepo := postgres.NewEventRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultEventBusConfig()
	eventBusConfig.Logger = log
	eventBusConfig.WorkerPoolSize = cfg.Ingestion.EventWorkers
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	recomputeCmd := command.NewRecomputeProgressHandler(courseRepo, eventRepo, snapshotRepo, eventBus, appLog)

	var recomputeOnIngest *command.RecomputeProgressHandler
	if cfg.Ingestion.SyncRecompute {
		recomputeOnIngest = recomputeCmd
	}
	recordEventCmd := command.NewRecordEventHandler(eventRepo, recomputeOnIngest, eventBus, appLog)

	getProgressQuery := query.NewGetProgressHandler(courseRepo, eventRepo, snapshotRepo, snapshotCache, appLog)
	getEventsQuery := query.NewGetEventsHandler(eventRepo)
	studentDashboardQuery := query.NewGetStudentDashboardHandler(courseRepo, eventRepo, snapshotRepo, dashboardCache, appLog)
	courseAnalyticsQuery := query.NewGetCourseAnalyticsHandler(courseRepo, snapshotRepo)
	listCoursesQuery := query.NewListCoursesHandler(courseRepo)
	getCourseQuery := query.NewGetCourseHandler(courseRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	if snapshotCache != nil {
		invalidateHandler := eventhandler.NewOnProgressRecomputedHandler(snapshotCache, log)
		if err := eventBus.Subscribe(invalidateHandler.EventType(), invalidateHandler.Handle); err != nil {
			return fmt.Errorf("failed to subscribe cache invalidation handler: %w", err)
		}
	}

	if cfg.Features.IsEnabled(config.FeatureNotifyCourseCompleted, nil) {
		completedHandler := eventhandler.NewOnCourseCompletedHandler(log)
		if err := eventBus.Subscribe(completedHandler.EventType(), completedHandler.Handle); err != nil {
			return fmt.Errorf("failed to subscribe completion handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.Server.Host
	httpConfig.Port = cfg.Server.Port
	httpConfig.ReadTimeout = cfg.Server.ReadTimeout
	httpConfig.WriteTimeout = cfg.Server.WriteTimeout
	httpConfig.IdleTimeout = cfg.Server.IdleTimeout
	httpConfig.EnableCORS = cfg.Server.EnableCORS
	httpConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Server.EnableMetrics
	httpConfig.RateLimitPerMinute = cfg.Server.RateLimitPerMinute

	httpDeps := httpserver.Dependencies{
		RecordEventHandler:         recordEventCmd,
		GetProgressHandler:         getProgressQuery,
		GetEventsHandler:           getEventsQuery,
		GetStudentDashboardHandler: studentDashboardQuery,
		GetCourseAnalyticsHandler:  courseAnalyticsQuery,
		ListCoursesHandler:         listCoursesQuery,
		GetCourseHandler:           getCourseQuery,
		Logger:                     appLog,
		HealthChecker:              healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. START
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("Smart LMS Platform API server is running",
		"http_address", httpServer.Address(),
		"sync_recompute", cfg.Ingestion.SyncRecompute,
		"cache_enabled", snapshotCache != nil,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
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
