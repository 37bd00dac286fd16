package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/transfa/griffin-service/internal/domain"
)

func newTestRepository(t *testing.T) *PostgresWorkflowRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("griffin"),
		postgres.WithUsername("griffin"),
		postgres.WithPassword("griffin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to resolve connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewPostgresWorkflowRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	// Applying the schema twice must be harmless.
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema returned error: %v", err)
	}
	return repo
}

func TestPostgresWorkflowRepository_OrphanedPaymentLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	submitted := &domain.PaymentWorkflowRecord{
		SourceAccountURL: "/v0/bank/accounts/ba.1",
		PaymentURL:       "/v0/payments/p.ok",
		SubmissionURL:    "/v0/submissions/s.ok",
		Scheme:           domain.SchemeFPS,
		Amount:           domain.Money{Currency: "GBP", Value: "10.00"},
		Stage:            domain.StageSubmitted,
	}
	orphan := &domain.PaymentWorkflowRecord{
		SourceAccountURL: "/v0/bank/accounts/ba.1",
		PaymentURL:       "/v0/payments/p.orphan",
		Scheme:           domain.SchemeBookTransfer,
		Amount:           domain.Money{Currency: "GBP", Value: "0.01"},
		Stage:            domain.StageSubmitFailed,
		Error:            "griffin API error (500): boom",
	}
	createFailed := &domain.PaymentWorkflowRecord{
		SourceAccountURL: "/v0/bank/accounts/ba.1",
		Scheme:           domain.SchemeFPS,
		Amount:           domain.Money{Currency: "GBP", Value: "1.00"},
		Stage:            domain.StageCreateFailed,
	}
	for _, rec := range []*domain.PaymentWorkflowRecord{submitted, orphan, createFailed} {
		if err := repo.RecordPaymentWorkflow(ctx, rec); err != nil {
			t.Fatalf("RecordPaymentWorkflow returned error: %v", err)
		}
		if rec.ID == "" {
			t.Fatal("expected record ID to be assigned")
		}
	}

	orphans, err := repo.ListOrphanedPayments(ctx, 10)
	if err != nil {
		t.Fatalf("ListOrphanedPayments returned error: %v", err)
	}
	if len(orphans) != 1 || orphans[0].PaymentURL != "/v0/payments/p.orphan" {
		t.Fatalf("expected only the orphaned payment, got %+v", orphans)
	}
	if orphans[0].Amount.Value != "0.01" || orphans[0].Scheme != domain.SchemeBookTransfer {
		t.Fatalf("unexpected orphan fields %+v", orphans[0])
	}

	if err := repo.ResolvePaymentWorkflow(ctx, orphan.ID); err != nil {
		t.Fatalf("ResolvePaymentWorkflow returned error: %v", err)
	}
	if err := repo.ResolvePaymentWorkflow(ctx, orphan.ID); !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound on second resolve, got %v", err)
	}

	orphans, err = repo.ListOrphanedPayments(ctx, 10)
	if err != nil {
		t.Fatalf("ListOrphanedPayments returned error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans after resolve, got %d", len(orphans))
	}
}

func TestPostgresWorkflowRepository_RecordAccountProvisioning(t *testing.T) {
	repo := newTestRepository(t)

	rec := &domain.AccountProvisioningRecord{
		DisplayName: "Operational Account",
		AccountURL:  "/v0/bank/accounts/ba.new",
		Status:      domain.AccountStatusOpening,
		Polls:       10,
		TimedOut:    true,
	}
	if err := repo.RecordAccountProvisioning(context.Background(), rec); err != nil {
		t.Fatalf("RecordAccountProvisioning returned error: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt to be filled, got %+v", rec)
	}
}

func TestResolvePaymentWorkflow_RejectsMalformedID(t *testing.T) {
	repo := &PostgresWorkflowRepository{}
	if err := repo.ResolvePaymentWorkflow(context.Background(), "not-a-uuid"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestNoopWorkflowRepository(t *testing.T) {
	var repo WorkflowRepository = NoopWorkflowRepository{}
	ctx := context.Background()
	if err := repo.RecordPaymentWorkflow(ctx, &domain.PaymentWorkflowRecord{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orphans, err := repo.ListOrphanedPayments(ctx, 5)
	if err != nil || len(orphans) != 0 {
		t.Fatalf("expected empty result, got %v, %v", orphans, err)
	}
	if err := repo.ResolvePaymentWorkflow(ctx, "x"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
}
