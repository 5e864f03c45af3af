package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/config"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/monitoring"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/audit"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/shared/redis"
	v1 "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1"
	v1handlers "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/handlers"
	v1middleware "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/middleware"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/policy"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting CPT bid marketplace initialization")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	dbConfig := v1.NewDatabaseConfig()
	repo, closeDB, err := v1.OpenRepository(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "type", dbConfig.Type, "error", err)
		os.Exit(1)
	}

	// Redis backs token revocation and the audit stream; both degrade to no-ops without it
	var (
		revocation services.TokenRevocationStore
		auditor    audit.Auditor = audit.NoopAuditor{}
		redisConn  *redis.RedisClient
	)
	if cfg.Redis.Enabled() {
		redisConn, err = redis.NewClient(&redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		revocation = services.NewRedisTokenRevocationStore(redisConn)
		auditor = audit.NewStreamAuditor(redisConn, config.GetEnvOrDefault("AUDIT_STREAM", audit.DefaultStream))
	} else {
		slog.Warn("REDIS_ADDR not set, logout revocation and audit stream are disabled")
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	rateLimiter := v1middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.StartCleanup(rootCtx, time.Minute)

	rolePolicy, err := policy.NewRoleEvaluator(rootCtx)
	if err != nil {
		slog.Error("Failed to load role policy", "error", err)
		os.Exit(1)
	}

	v1Handler := v1handlers.NewV1Handler(v1handlers.Dependencies{
		Repository:  repo,
		Tokens:      services.NewTokenService(cfg.JWT),
		Revocation:  revocation,
		Auditor:     auditor,
		RateLimiter: rateLimiter,
		Policy:      rolePolicy,
	})

	// Middleware order: recover first, then request id, headers, logging, CORS, body cap, metrics
	r := chi.NewRouter()
	r.Use(v1middleware.PanicRecovery)
	r.Use(chimiddleware.RequestID)
	if cfg.TrustedProxy {
		// Rewrites RemoteAddr from forwarded headers; only safe behind a proxy that sets them
		r.Use(chimiddleware.RealIP)
	}
	r.Use(v1middleware.SecurityHeaders)
	r.Use(v1middleware.SecurityLogging)
	r.Use(v1middleware.CORSMiddleware(v1middleware.DefaultCORSConfig(cfg.FrontendURL)))
	r.Use(v1middleware.BodyLimit(v1middleware.DefaultMaxBodyBytes))
	r.Use(monitoring.HTTPMetricsMiddleware)

	r.Handle("/metrics", monitoring.Handler())
	v1Handler.SetupV1Routes(r)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("CPT bid marketplace starting", "addr", addr, "environment", cfg.Environment, "database", dbConfig.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down CPT bid marketplace...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisConn != nil {
		if err := redisConn.Close(); err != nil {
			slog.Error("Failed to close Redis connection", "error", err)
		}
	}
	if err := closeDB(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}

	slog.Info("CPT bid marketplace exited")
}
