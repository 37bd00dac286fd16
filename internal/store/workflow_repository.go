/**
 * @description
 * This file implements the data access layer for workflow journaling. It records
 * create-and-submit payment runs and account provisioning runs in PostgreSQL, and
 * answers the orphaned-payment report query.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver.
 * - github.com/google/uuid: Record identifiers.
 */
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transfa/griffin-service/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS payment_workflows (
    id                 UUID PRIMARY KEY,
    source_account_url TEXT NOT NULL,
    payment_url        TEXT,
    submission_url     TEXT,
    scheme             TEXT NOT NULL,
    amount             TEXT NOT NULL,
    currency           TEXT NOT NULL,
    stage              TEXT NOT NULL,
    error              TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    resolved_at        TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_payment_workflows_orphaned
    ON payment_workflows (created_at)
    WHERE stage = 'submit_failed' AND resolved_at IS NULL;

CREATE TABLE IF NOT EXISTS account_provisionings (
    id           UUID PRIMARY KEY,
    display_name TEXT NOT NULL,
    account_url  TEXT NOT NULL,
    status       TEXT NOT NULL,
    polls        INTEGER NOT NULL DEFAULT 0,
    timed_out    BOOLEAN NOT NULL DEFAULT FALSE,
    poll_error   TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresWorkflowRepository is the PostgreSQL implementation of WorkflowRepository.
type PostgresWorkflowRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresWorkflowRepository creates a new instance of PostgresWorkflowRepository.
func NewPostgresWorkflowRepository(db *pgxpool.Pool, logger *slog.Logger) *PostgresWorkflowRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWorkflowRepository{db: db, logger: logger}
}

// EnsureSchema creates the journal tables if they do not exist yet.
func (r *PostgresWorkflowRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure workflow schema: %w", err)
	}
	return nil
}

// RecordPaymentWorkflow inserts a payment workflow record. A missing ID or timestamp is filled in.
func (r *PostgresWorkflowRepository) RecordPaymentWorkflow(ctx context.Context, record *domain.PaymentWorkflowRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO payment_workflows (
            id, source_account_url, payment_url, submission_url, scheme,
            amount, currency, stage, error, created_at, resolved_at
        )
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
    `
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.SourceAccountURL,
		record.PaymentURL,
		record.SubmissionURL,
		string(record.Scheme),
		record.Amount.Value,
		record.Amount.Currency,
		string(record.Stage),
		record.Error,
		record.CreatedAt,
		record.ResolvedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("payment workflow already recorded", "component", "workflow_repository", "id", record.ID)
		}
		return fmt.Errorf("failed to insert payment workflow: %w", err)
	}
	return nil
}

// RecordAccountProvisioning inserts an account provisioning record.
func (r *PostgresWorkflowRepository) RecordAccountProvisioning(ctx context.Context, record *domain.AccountProvisioningRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO account_provisionings (
            id, display_name, account_url, status, polls, timed_out, poll_error, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
    `
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.DisplayName,
		record.AccountURL,
		string(record.Status),
		record.Polls,
		record.TimedOut,
		record.PollError,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account provisioning: %w", err)
	}
	return nil
}

// ListOrphanedPayments returns unresolved runs whose payment was created but never submitted,
// oldest first.
func (r *PostgresWorkflowRepository) ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
        SELECT id, source_account_url, COALESCE(payment_url, ''), COALESCE(submission_url, ''),
               scheme, amount, currency, stage, COALESCE(error, ''), created_at, resolved_at
        FROM payment_workflows
        WHERE stage = $1 AND resolved_at IS NULL
        ORDER BY created_at ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, string(domain.StageSubmitFailed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orphaned payments: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentWorkflowRecord, error) {
		var rec domain.PaymentWorkflowRecord
		var scheme, stage string
		err := row.Scan(
			&rec.ID,
			&rec.SourceAccountURL,
			&rec.PaymentURL,
			&rec.SubmissionURL,
			&scheme,
			&rec.Amount.Value,
			&rec.Amount.Currency,
			&stage,
			&rec.Error,
			&rec.CreatedAt,
			&rec.ResolvedAt,
		)
		rec.Scheme = domain.PaymentScheme(scheme)
		rec.Stage = domain.PaymentWorkflowStage(stage)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan orphaned payments: %w", err)
	}
	return records, nil
}

// ResolvePaymentWorkflow marks an orphaned payment as handled by an operator.
func (r *PostgresWorkflowRepository) ResolvePaymentWorkflow(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrWorkflowNotFound
	}
	query := `UPDATE payment_workflows SET resolved_at = NOW() WHERE id = $1 AND resolved_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to resolve payment workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}
