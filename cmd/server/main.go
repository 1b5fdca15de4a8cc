package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/goinvoice/internal/adapter/http"
	"github.com/iho/goinvoice/internal/adapter/http/handler"
	"github.com/iho/goinvoice/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goinvoice/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goinvoice/internal/adapter/repository/redis"
	"github.com/iho/goinvoice/internal/infrastructure/auth"
	"github.com/iho/goinvoice/internal/infrastructure/config"
	"github.com/iho/goinvoice/internal/infrastructure/logger"
	"github.com/iho/goinvoice/internal/infrastructure/metrics"
	"github.com/iho/goinvoice/internal/infrastructure/postgres"
	"github.com/iho/goinvoice/internal/infrastructure/redis"
	"github.com/iho/goinvoice/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis (optional)
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache and idempotency")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	// Metrics
	appMetrics := metrics.New()

	// Initialize repositories
	retrier := postgresRepo.NewRetrier(appLogger)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool, retrier)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, idGen, cache, appMetrics)
	installmentUC := usecase.NewInstallmentUseCase(invoiceRepo, idGen, cache, appMetrics)
	paymentUC := usecase.NewPaymentUseCase(invoiceRepo, idGen, cache, appMetrics)

	// Initialize handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceUC)
	installmentHandler := handler.NewInstallmentHandler(installmentUC)
	paymentHandler := handler.NewPaymentHandler(paymentUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Optional JWT auth
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Drop idle per-IP limiters once an hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			rateLimiter.Reset()
		}
	}()

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		InvoiceHandler:     invoiceHandler,
		InstallmentHandler: installmentHandler,
		PaymentHandler:     paymentHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		JWTManager:         jwtManager,
		Logging:            middleware.NewLoggingMiddleware(appLogger),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
