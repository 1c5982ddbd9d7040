package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/spsh-store/email-service/internal/config"
	"github.com/spsh-store/email-service/internal/domain"
	"github.com/spsh-store/email-service/internal/handler"
	"github.com/spsh-store/email-service/internal/middleware"
	"github.com/spsh-store/email-service/internal/provider"
	"github.com/spsh-store/email-service/internal/ratelimit"
	"github.com/spsh-store/email-service/internal/service"
)

// @title Email Dispatch Service API
// @version 1.0
// @description Transactional email dispatch for the SPSH storefront

// @host localhost:8080
// @BasePath /

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting email dispatch service",
		"env", cfg.App.Env,
		"port", cfg.Server.Port,
		"provider", cfg.Email.Provider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := handler.NewHealthHandler()

	// Rate limiter: Redis-backed window when configured, otherwise a
	// per-process in-memory window
	var limiter domain.RateLimiter
	if cfg.Redis.URL != "" {
		redisLimiter, err := ratelimit.NewRedisLimiter(ctx, cfg.Redis, cfg.RateLimit)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisLimiter.Close()
		healthHandler.AddChecker("redis", redisLimiter)
		limiter = redisLimiter
		logger.Info("using Redis rate limiter")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.WindowDuration, cfg.RateLimit.MaxRequests)
		logger.Info("using in-memory rate limiter")
	}

	// Delivery provider
	var emailProvider domain.EmailProvider
	switch cfg.Email.Provider {
	case "smtp":
		emailProvider = provider.NewSMTPProvider(cfg.Email)
	default:
		emailProvider = provider.NewSendGridProvider(cfg.Email)
	}

	dispatchService := service.NewDispatchService(limiter, emailProvider, cfg.Email.Sender, logger)

	metrics := handler.NewMetrics()
	emailHandler := handler.NewEmailHandler(dispatchService, metrics)

	// Setup router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Correlation)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(metrics))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/emails", func(r chi.Router) {
			emailHandler.RegisterRoutes(r)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	cancel()

	logger.Info("server stopped")
}
