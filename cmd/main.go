package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/config"
	database "github.com/duynhne/doctor-service/internal/core"
	"github.com/duynhne/doctor-service/internal/core/cache"
	"github.com/duynhne/doctor-service/internal/core/repository/psql"
	logicv1 "github.com/duynhne/doctor-service/internal/logic/v1"
	"github.com/duynhne/doctor-service/internal/web/pages"
	v1 "github.com/duynhne/doctor-service/internal/web/v1"
	"github.com/duynhne/doctor-service/middleware"
)

func main() {
	// Load configuration from environment variables (with .env file support for local dev)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
			tp = nil
		} else {
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg.Profiling); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized", zap.String("endpoint", cfg.Profiling.Endpoint))
			defer middleware.StopProfiling()
		}
	} else {
		logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	pool, err := database.Connect(startCtx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Database connection pool established")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(startCtx, pool, logger); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	repo := psql.NewDoctorRepository(pool)
	if cfg.Database.SeedFile != "" {
		seedDoctors(startCtx, repo, cfg.Database.SeedFile, logger)
	}

	opts := []logicv1.Option{logicv1.WithLogger(logger)}
	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb, err = cache.Connect(startCtx, cfg.Cache)
		if err != nil {
			// The cache is optional; lookups go straight to PostgreSQL.
			logger.Warn("Redis unavailable, doctor cache disabled", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
			rdb = nil
		} else {
			opts = append(opts, logicv1.WithCache(cache.NewDoctorCache(rdb, cfg.GetCacheTTLDuration())))
			logger.Info("Doctor cache enabled",
				zap.String("addr", cfg.Cache.Addr),
				zap.Duration("ttl", cfg.GetCacheTTLDuration()),
			)
		}
	}
	svc := logicv1.NewDoctorService(repo, opts...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware())

	// Logging middleware (must be before Prometheus middleware)
	r.Use(middleware.LoggingMiddleware(logger))

	if cfg.Metrics.Enabled {
		r.Use(middleware.PrometheusMiddleware())
	}

	r.SetHTMLTemplate(pages.Templates())

	authClient := middleware.NewAuthClient(cfg.AuthServiceURL)
	adminGuard := middleware.AdminAuthMiddleware(authClient, logger, cfg.AuthAllowUnauthenticatedFallback)
	pageGuard := middleware.AdminAuthMiddleware(authClient, logger, cfg.AuthAllowUnauthenticatedFallback,
		middleware.WithTokenCookie(cfg.AuthTokenCookie))
	logger.Info("Auth client initialized", zap.String("auth_service_url", cfg.AuthServiceURL))
	if cfg.AuthAllowUnauthenticatedFallback && !cfg.IsDevelopment() {
		logger.Warn("Unauthenticated admin fallback is enabled outside development",
			zap.String("env", cfg.Service.Env))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1.NewDoctorHandler(svc).Register(r.Group("/api"), adminGuard)
	pages.NewHandler(svc, cfg.Directory.PageSize).Register(r, pageGuard)

	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting doctor service", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Fail readiness first and wait for propagation.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		logger.Info("Readiness drain delay started", zap.Duration("delay", drainDelay))
		time.Sleep(drainDelay)
		logger.Info("Readiness drain delay completed", zap.Duration("delay", drainDelay))
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server...", zap.Duration("timeout", shutdownTimeout))

	// Cleanup order: HTTP server, cache, database, tracer.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server shutdown complete")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		} else {
			logger.Info("Redis client closed")
		}
	}

	pool.Close()
	logger.Info("Database pool closed")

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Tracer shutdown error", zap.Error(err))
		} else {
			logger.Info("Tracer shutdown complete")
		}
	}

	logger.Info("Graceful shutdown complete")
}

// seedDoctors loads a JSON fixture into the doctors table. Failures are logged,
// not fatal; the service can still serve whatever is already stored.
func seedDoctors(ctx context.Context, repo *psql.DoctorRepository, path string, logger *zap.Logger) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Failed to open seed file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	n, err := repo.Seed(ctx, f)
	if err != nil {
		logger.Warn("Seeding stopped early", zap.String("path", path), zap.Int("seeded", n), zap.Error(err))
		return
	}
	logger.Info("Seeded doctors", zap.String("path", path), zap.Int("count", n))
}
