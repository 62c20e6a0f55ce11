package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"readhub/database"
	"readhub/internal/cache"
	"readhub/internal/config"
	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/handler"
	"readhub/internal/microservices/http-api/middleware"
	"readhub/internal/microservices/http-api/repository"
	"readhub/internal/microservices/http-api/service"
	"readhub/internal/scheduler"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = cache.NewClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info("redis_connected")
	} else {
		logger.Warn("redis_disabled", "reason", "REDIS_URL not set")
	}

	policy, err := gamification.ParseStreakBonusPolicy(cfg.StreakBonusPolicy)
	if err != nil {
		return err
	}

	var (
		loc      = cfg.Location()
		clock    = clockwork.NewRealClock()
		store    = repository.NewStore(db)
		progress = cache.NewProgressCache(rdb, cfg.CacheTTL)
		locker   = cache.NewUserLocker(rdb, cfg.LockTTL, cfg.LockWait, logger)
	)

	xpSync := service.NewXPSyncService(store, progress, locker, logger)
	sessionSvc := service.NewSessionService(store, progress, locker, service.SessionServiceConfig{
		StreakPolicy:    policy,
		DefaultLocation: loc,
		Catalog:         gamification.DefaultCatalog,
		Clock:           clock,
		Logger:          logger,
	})
	progressSvc := service.NewProgressService(store, progress, loc, clock, logger)
	badgeSvc := service.NewBadgeService(store, gamification.DefaultCatalog, locker, loc, clock, logger)
	bookSvc := service.NewBookService(store, xpSync, clock, logger)
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db))

	handler.RequestTimeout = cfg.RequestTimeout
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewUserRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst)
	go sweepLimiter(ctx, limiter)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.NewHealthHandler(healthChecks(db, rdb)).RegisterRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	{
		handler.NewProfileHandler(progressSvc).RegisterRoutes(api.Group("/profile"))
		handler.NewProgressHandler(progressSvc, xpSync).RegisterRoutes(api.Group("/progress"))
		handler.NewSessionHandler(sessionSvc).RegisterRoutes(api.Group("/sessions"), middleware.RateLimitPerUser(limiter))
		handler.NewBadgeHandler(badgeSvc).RegisterRoutes(api.Group("/badges"))
		handler.NewBookHandler(bookSvc).RegisterRoutes(api.Group("/books"))
		handler.NewNotificationHandler(notificationSvc).RegisterRoutes(api.Group("/notifications"))
	}

	if cfg.ResyncSchedule != "" {
		job := scheduler.NewResyncJob(xpSync, cfg.ResyncWorkers, logger)
		sched, err := scheduler.Schedule(ctx, job, cfg.ResyncSchedule, loc, clock)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn("scheduler_shutdown_failed", "error", err)
			}
		}()
		if next, err := sched.NextRun(); err == nil {
			logger.Info("xp_resync_scheduled", "schedule", cfg.ResyncSchedule, "next_run", next)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http_server_starting", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped_gracefully")
	return nil
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

func sweepLimiter(ctx context.Context, l *middleware.UserRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
