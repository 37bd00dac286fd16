/**
 * @description
 * Builds the object graph shared by the HTTP server and the command line tool:
 * the Griffin client, the workflow journal, the event publisher and the
 * application services on top of them.
 *
 * @notes
 * - DATABASE_URL and RABBITMQ_URL are optional. Without them the journal is a
 *   no-op and events are only logged.
 */
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/griffin-service/internal/app"
	"github.com/transfa/griffin-service/internal/config"
	"github.com/transfa/griffin-service/internal/store"
	"github.com/transfa/griffin-service/pkg/griffinclient"
	"github.com/transfa/griffin-service/pkg/rabbitmq"
)

// Dependencies holds everything a binary needs to serve Griffin operations.
type Dependencies struct {
	Client      *griffinclient.Client
	Repo        store.WorkflowRepository
	Publisher   rabbitmq.Publisher
	Provisioner *app.AccountProvisioner
	Payments    *app.PaymentOrchestrator
	Service     *app.Service
	Jobs        *app.Jobs

	pool *pgxpool.Pool
}

// Build wires the dependencies from cfg. Callers must Close the result.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Client = griffinclient.NewClient(cfg.GriffinAPIBaseURL, cfg.GriffinAPIKey,
		griffinclient.WithRequestTimeout(cfg.GriffinRequestTimeout),
		griffinclient.WithGetRetries(cfg.GriffinMaxGetRetries, 0),
		griffinclient.WithLogger(logger),
	)

	deps.Repo = store.NoopWorkflowRepository{}
	if cfg.DatabaseURL != "" {
		pool, err := openPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := store.NewPostgresWorkflowRepository(pool, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to prepare workflow schema: %w", err)
		}
		deps.pool = pool
		deps.Repo = repo
		logger.Info("workflow journal enabled", "component", "bootstrap")
	}

	deps.Publisher = rabbitmq.NewEventProducerFallback(logger)
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("failed to connect event producer; events will only be logged", "component", "bootstrap", "err", err)
		} else {
			deps.Publisher = producer
		}
	}

	deps.Payments = app.NewPaymentOrchestrator(deps.Client, deps.Repo, deps.Publisher, cfg.EventsExchange, logger)
	deps.Provisioner = app.NewAccountProvisioner(deps.Client, deps.Repo, deps.Publisher, cfg.EventsExchange, logger,
		cfg.ProvisionPollInterval, cfg.ProvisionPollTimeout)
	deps.Service = app.NewService(deps.Client, deps.Payments, deps.Provisioner, deps.Repo, logger, cfg.AllowLiveAPIKey)
	deps.Jobs = app.NewJobs(deps.Repo, deps.Publisher, cfg.EventsExchange, logger)

	return deps, nil
}

func openPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	dbConfig.MaxConns = 10
	dbConfig.MinConns = 1
	dbConfig.MaxConnLifetime = 30 * time.Minute
	dbConfig.MaxConnIdleTime = 5 * time.Minute
	// Poolers in front of the database reject named prepared statements.
	dbConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

// Close releases the publisher and database pool.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
