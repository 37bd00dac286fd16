/**
 * @description
 * This is the main entry point for the griffin-service. It initializes all
 * necessary components, verifies the Griffin API key and serves the HTTP API.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Refuses to start against a live Griffin key unless explicitly allowed.
 * - Optionally journals workflows in PostgreSQL and publishes events to RabbitMQ.
 * - Consumes account.open.requested commands and runs the orphaned-payment report.
 * - Implements graceful shutdown.
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/transfa/griffin-service/internal/api"
	"github.com/transfa/griffin-service/internal/app"
	"github.com/transfa/griffin-service/internal/bootstrap"
	"github.com/transfa/griffin-service/internal/config"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/pkg/middleware"
	"github.com/transfa/griffin-service/pkg/rabbitmq"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("griffin-service stopped with error", "component", "main", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables", "component", "bootstrap")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	key, err := deps.Service.VerifySandboxKey(ctx)
	if err != nil {
		return fmt.Errorf("griffin API key check failed: %w", err)
	}
	logger.Info("griffin API key verified", "component", "bootstrap", "api_key_name", key.APIKeyName, "live", key.Live)

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	scheduler := app.NewScheduler(deps.Jobs, logger, cfg.OrphanedPaymentJobSchedule)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           api.NewRouter(cfg, deps.Service, limiter, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "component", "http", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	})

	if cfg.RabbitMQURL != "" {
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("failed to connect consumer; account commands disabled", "component", "bootstrap", "err", err)
		} else {
			defer consumer.Close()
			handler := app.NewAccountEventHandler(deps.Provisioner, logger)
			g.Go(func() error {
				logger.Info("starting consumer", "component", "consumer", "routing_key", domain.CommandAccountOpenRequested)
				err := consumer.Consume(gctx, cfg.CommandsExchange, cfg.AccountOpenQueue, domain.CommandAccountOpenRequested, handler.HandleAccountOpenRequested)
				if err != nil && gctx.Err() == nil {
					// Non-fatal: the HTTP API keeps serving without the consumer.
					logger.Error("consumer stopped", "component", "consumer", "err", err)
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down griffin-service", "component", "main")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("server gracefully stopped", "component", "http")
		return nil
	})

	return g.Wait()
}

// newLimiter returns the Redis-backed limiter when REDIS_URL is reachable and the
// in-process one otherwise.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (middleware.Limiter, func()) {
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("redis url parse failed; using in-memory rate limiting", "component", "bootstrap", "err", err)
		} else {
			client := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				logger.Warn("redis ping failed; using in-memory rate limiting", "component", "bootstrap", "err", err)
				client.Close()
			} else {
				logger.Info("redis connected", "component", "bootstrap")
				return app.NewRedisRateLimiter(client, cfg.RedisRateLimitPrefix), func() { client.Close() }
			}
		}
	}
	memory := middleware.NewMemoryLimiter()
	return memory, memory.Stop
}
