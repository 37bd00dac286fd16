/**
 * @description
 * Scheduled jobs for the griffin-service. The orphaned payment job reports payments
 * that were created upstream but whose submission failed, so an operator can decide
 * whether to resubmit or cancel them.
 *
 * @notes
 * - The job only reports. It never resubmits, cancels or deletes a payment.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/internal/store"
)

const orphanedPaymentJobTimeout = 2 * time.Minute

// Jobs holds the dependencies of the scheduled jobs.
type Jobs struct {
	repo      store.WorkflowRepository
	publisher EventPublisher
	exchange  string
	logger    *slog.Logger
	batchSize int
}

// NewJobs creates a new Jobs instance.
func NewJobs(repo store.WorkflowRepository, publisher EventPublisher, exchange string, logger *slog.Logger) *Jobs {
	if repo == nil {
		repo = store.NoopWorkflowRepository{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Jobs{
		repo:      repo,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
		batchSize: defaultOrphanReportLimit,
	}
}

// ReportOrphanedPayments logs every unresolved orphaned payment and publishes a reminder for each.
func (j *Jobs) ReportOrphanedPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), orphanedPaymentJobTimeout)
	defer cancel()

	log := j.logger.With("job", "orphaned_payments")
	records, err := j.repo.ListOrphanedPayments(ctx, j.batchSize)
	if err != nil {
		log.Error("failed to list orphaned payments", "error", err)
		return
	}
	if len(records) == 0 {
		log.Debug("no orphaned payments")
		return
	}

	for _, rec := range records {
		log.Warn("payment created but never submitted",
			"workflow_id", rec.ID,
			"payment_url", rec.PaymentURL,
			"source_account_url", rec.SourceAccountURL,
			"amount", rec.Amount.Value,
			"currency", rec.Amount.Currency,
			"age", time.Since(rec.CreatedAt).Round(time.Second).String(),
		)
		event := domain.PaymentEvent{
			EventID:          uuid.NewString(),
			WorkflowID:       rec.ID,
			SourceAccountURL: rec.SourceAccountURL,
			PaymentURL:       rec.PaymentURL,
			Scheme:           rec.Scheme,
			Amount:           rec.Amount,
			Error:            rec.Error,
			Timestamp:        time.Now().UTC(),
		}
		if err := j.publisher.Publish(ctx, j.exchange, domain.EventPaymentOrphanedReminder, event); err != nil {
			log.Warn("failed to publish orphaned payment reminder", "workflow_id", rec.ID, "error", err)
		}
	}
	log.Info("orphaned payment report complete", "count", len(records))
}
