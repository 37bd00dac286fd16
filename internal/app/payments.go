/**
 * @description
 * This file implements the create-and-submit payment workflow. A payment is created
 * against the source account and, only if that succeeds, submitted exactly once to
 * the requested scheme.
 *
 * @notes
 * - A submission failure is reported as *PartialPaymentError. The created payment is
 *   left in place upstream; it is never retried or deleted here.
 * - Journaling and event publishing are best-effort and never change the outcome.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/internal/store"
)

const sideEffectTimeout = 5 * time.Second

// CreateAndSubmitInput describes one payment. Exactly one target must be given: a payee,
// another account in the organization, or a complete external UK account.
type CreateAndSubmitInput struct {
	SourceAccountURL string               `json:"source_account_url"`
	Amount           string               `json:"amount"`
	Currency         string               `json:"currency"`
	Reference        string               `json:"reference,omitempty"`
	Scheme           domain.PaymentScheme `json:"scheme"`

	PayeeURL         string `json:"payee_url,omitempty"`
	TargetAccountURL string `json:"target_account_url,omitempty"`

	AccountHolder string `json:"account_holder,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankID        string `json:"bank_id,omitempty"`
}

// creditor resolves the single complete target group into a Creditor.
func (in CreateAndSubmitInput) creditor() (domain.Creditor, error) {
	var candidates []domain.Creditor
	if in.PayeeURL != "" {
		candidates = append(candidates, domain.NewPayeeCreditor(in.PayeeURL))
	}
	if in.TargetAccountURL != "" {
		candidates = append(candidates, domain.NewBankAccountCreditor(in.TargetAccountURL))
	}
	if in.AccountHolder != "" && in.AccountNumber != "" && in.BankID != "" {
		candidates = append(candidates, domain.NewUKDomesticCreditor(domain.UKDomesticAccount{
			AccountHolder: in.AccountHolder,
			AccountNumber: in.AccountNumber,
			BankID:        in.BankID,
		}))
	}

	if len(candidates) != 1 {
		return domain.Creditor{}, invalid("creditor",
			"exactly one of payee_url, target_account_url, or account_holder+account_number+bank_id must be provided")
	}
	return candidates[0], nil
}

func (in CreateAndSubmitInput) validate() (domain.Creditor, error) {
	if strings.TrimSpace(in.SourceAccountURL) == "" {
		return domain.Creditor{}, invalid("source_account_url", "is required")
	}
	if in.Amount == "" {
		return domain.Creditor{}, invalid("amount", "is required")
	}
	if in.Currency == "" {
		return domain.Creditor{}, invalid("currency", "is required")
	}
	if !in.Scheme.Valid() {
		return domain.Creditor{}, invalid("scheme", fmt.Sprintf("must be %q or %q", domain.SchemeFPS, domain.SchemeBookTransfer))
	}
	return in.creditor()
}

// PaymentOrchestrator drives the create-and-submit workflow.
type PaymentOrchestrator struct {
	client    GriffinClient
	repo      store.WorkflowRepository
	publisher EventPublisher
	exchange  string
	logger    *slog.Logger
}

// NewPaymentOrchestrator creates a new PaymentOrchestrator. repo and publisher may be nil.
func NewPaymentOrchestrator(client GriffinClient, repo store.WorkflowRepository, publisher EventPublisher, exchange string, logger *slog.Logger) *PaymentOrchestrator {
	if repo == nil {
		repo = store.NoopWorkflowRepository{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentOrchestrator{
		client:    client,
		repo:      repo,
		publisher: publisher,
		exchange:  exchange,
		logger:    logger,
	}
}

// CreateAndSubmit validates input, creates the payment and submits it.
func (o *PaymentOrchestrator) CreateAndSubmit(ctx context.Context, in CreateAndSubmitInput) (*domain.PaymentWithSubmission, error) {
	creditor, err := in.validate()
	if err != nil {
		return nil, err
	}

	amount := domain.Money{Currency: in.Currency, Value: in.Amount}
	record := &domain.PaymentWorkflowRecord{
		ID:               uuid.NewString(),
		SourceAccountURL: in.SourceAccountURL,
		Scheme:           in.Scheme,
		Amount:           amount,
		CreatedAt:        time.Now().UTC(),
	}
	log := o.logger.With("component", "payment_orchestrator", "workflow_id", record.ID, "source_account_url", in.SourceAccountURL)

	payment, err := o.client.CreatePayment(ctx, in.SourceAccountURL, domain.CreatePaymentRequest{
		Creditor:         creditor,
		PaymentAmount:    amount,
		PaymentReference: in.Reference,
	})
	if err != nil {
		log.Warn("payment creation failed", "err", err)
		record.Stage = domain.StageCreateFailed
		record.Error = err.Error()
		o.journal(ctx, log, record)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	record.PaymentURL = payment.PaymentURL

	submission, err := o.client.SubmitPayment(ctx, payment.PaymentURL, in.Scheme)
	if err != nil {
		log.Error("payment created but submission failed", "payment_url", payment.PaymentURL, "err", err)
		record.Stage = domain.StageSubmitFailed
		record.Error = err.Error()
		o.journal(ctx, log, record)
		o.publish(ctx, log, domain.EventPaymentSubmissionFailed, record)
		return nil, &PartialPaymentError{Payment: payment, Err: err}
	}

	record.Stage = domain.StageSubmitted
	record.SubmissionURL = submission.SubmissionURL
	log.Info("payment submitted", "payment_url", payment.PaymentURL, "submission_url", submission.SubmissionURL)
	o.journal(ctx, log, record)
	o.publish(ctx, log, domain.EventPaymentSubmitted, record)

	return &domain.PaymentWithSubmission{Payment: *payment, Submission: *submission}, nil
}

// journal and publish run detached from the caller's cancellation.
func (o *PaymentOrchestrator) journal(ctx context.Context, log *slog.Logger, record *domain.PaymentWorkflowRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := o.repo.RecordPaymentWorkflow(ctx, record); err != nil {
		log.Warn("failed to journal payment workflow", "stage", record.Stage, "err", err)
	}
}

func (o *PaymentOrchestrator) publish(ctx context.Context, log *slog.Logger, routingKey string, record *domain.PaymentWorkflowRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	event := domain.PaymentEvent{
		EventID:          uuid.NewString(),
		WorkflowID:       record.ID,
		SourceAccountURL: record.SourceAccountURL,
		PaymentURL:       record.PaymentURL,
		SubmissionURL:    record.SubmissionURL,
		Scheme:           record.Scheme,
		Amount:           record.Amount,
		Error:            record.Error,
		Timestamp:        time.Now().UTC(),
	}
	if err := o.publisher.Publish(ctx, o.exchange, routingKey, event); err != nil {
		log.Warn("failed to publish payment event", "routing_key", routingKey, "err", err)
	}
}
