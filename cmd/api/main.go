// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/jobtrack/internal/admin"
	"github.com/angelamos/jobtrack/internal/auth"
	"github.com/angelamos/jobtrack/internal/config"
	"github.com/angelamos/jobtrack/internal/core"
	"github.com/angelamos/jobtrack/internal/cv"
	"github.com/angelamos/jobtrack/internal/health"
	"github.com/angelamos/jobtrack/internal/middleware"
	"github.com/angelamos/jobtrack/internal/server"
	"github.com/angelamos/jobtrack/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

// csrfExemptPaths are endpoints reachable before a session exists, plus
// health probes. Everything else mutating needs the double-submit pair.
var csrfExemptPaths = []string{
	"/v1/auth/login",
	"/v1/auth/register",
	"/v1/auth/activate",
	"/v1/auth/invitation/verify",
	"/v1/auth/csrf",
	"/health",
	"/healthz",
	"/livez",
	"/readyz",
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"issuer", cfg.JWT.Issuer,
		"session_ttl", cfg.JWT.SessionTokenTTL,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(userSvc, tokens, cfg.Auth)
	cookies := auth.NewCookieWriter(cfg.IsProduction(), cfg.JWT.SessionTokenTTL)
	authHandler := auth.NewHandler(authSvc, cookies)

	cvHandler := cv.NewHandler(cv.NewRedisQueue(redis.Client))

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	hops := cfg.Server.TrustedProxyHops

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewGlobalRateLimiter(redis.Client, middleware.GlobalRateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.GlobalRequests,
				cfg.RateLimit.GlobalBurst,
			),
			FailOpen:    true,
			TrustedHops: hops,
			BypassFunc:  middleware.HealthBypass,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.NewCSRF(csrfExemptPaths).Handler)

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Guard(tokens, userSvc, middleware.RoutePolicy{})
	premiumGate := middleware.Guard(tokens, userSvc, middleware.RoutePolicy{
		RequiresPremium: true,
	})
	adminOnly := middleware.RequireAdmin(userSvc)

	loginLimiter := middleware.NewFixedWindowLimiter(
		"login",
		redis.Client,
		middleware.WindowConfig{
			Window: cfg.RateLimit.Window,
			Limit:  cfg.RateLimit.LoginRequests,
		},
		hops,
	).Handler

	registerLimiter := middleware.NewFixedWindowLimiter(
		"register",
		redis.Client,
		middleware.WindowConfig{
			Window: cfg.RateLimit.Window,
			Limit:  cfg.RateLimit.RegisterRequests,
		},
		hops,
	).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter, registerLimiter)
		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
		cvHandler.RegisterRoutes(r, premiumGate)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
