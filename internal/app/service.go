/**
 * @description
 * This file contains the core business logic for the griffin-service, implemented
 * as a `Service`. It is the single boundary the HTTP handlers and the CLI call: it
 * validates input, forwards reads to the Griffin API, and runs the payment and
 * provisioning workflows.
 *
 * @notes
 * - This service layer keeps the API handlers (controllers) thin and focused
 *   on HTTP concerns, while the business logic remains independent.
 * - Methods return (value, error). Callers convert to a Result with NewResult.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/internal/store"
)

const (
	// DefaultTransactionLimit is used when no transaction page size is given.
	DefaultTransactionLimit = 10
	// MaxTransactionLimit is the largest transaction page size accepted.
	MaxTransactionLimit = 100

	defaultOrphanReportLimit = 100
)

// ErrLiveAPIKey is returned by VerifySandboxKey when the key belongs to a live organization.
var ErrLiveAPIKey = errors.New("live API key detected; this service is only for use against the Griffin sandbox")

// Service provides every boundary operation of the griffin-service.
type Service struct {
	client       GriffinClient
	payments     *PaymentOrchestrator
	provisioner  *AccountProvisioner
	repo         store.WorkflowRepository
	logger       *slog.Logger
	allowLiveKey bool
}

// NewService creates a new instance of Service.
func NewService(client GriffinClient, payments *PaymentOrchestrator, provisioner *AccountProvisioner, repo store.WorkflowRepository, logger *slog.Logger, allowLiveKey bool) *Service {
	if repo == nil {
		repo = store.NoopWorkflowRepository{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:       client,
		payments:     payments,
		provisioner:  provisioner,
		repo:         repo,
		logger:       logger,
		allowLiveKey: allowLiveKey,
	}
}

func requireURL(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// VerifySandboxKey refuses to run against a live organization unless explicitly allowed.
func (s *Service) VerifySandboxKey(ctx context.Context) (*domain.APIKey, error) {
	index, err := s.client.GetIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch API index: %w", err)
	}
	key, err := s.client.GetAPIKey(ctx, index.APIKeyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch API key: %w", err)
	}
	if key.Live {
		if !s.allowLiveKey {
			return key, ErrLiveAPIKey
		}
		s.logger.Warn("live API key in use", "component", "service", "api_key_url", key.APIKeyURL)
	}
	return key, nil
}

// --- Bank accounts ---

func (s *Service) GetBankAccount(ctx context.Context, accountURL string) (*domain.BankAccount, error) {
	if err := requireURL("account_url", accountURL); err != nil {
		return nil, err
	}
	return s.client.GetBankAccount(ctx, accountURL)
}

func (s *Service) ListBankAccounts(ctx context.Context, filters domain.BankAccountListFilters) (*domain.BankAccountList, error) {
	return s.client.ListBankAccounts(ctx, filters)
}

// ListTransactions returns up to limit transactions. A zero limit means DefaultTransactionLimit.
func (s *Service) ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error) {
	if err := requireURL("account_url", accountURL); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = DefaultTransactionLimit
	}
	if limit < 1 || limit > MaxTransactionLimit {
		return nil, invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxTransactionLimit))
	}
	return s.client.ListTransactions(ctx, accountURL, limit)
}

// OpenOperationalAccount runs the provisioning workflow.
func (s *Service) OpenOperationalAccount(ctx context.Context, displayName string) (*domain.BankAccount, error) {
	return s.provisioner.OpenOperationalAccount(ctx, displayName)
}

// --- Legal persons ---

func (s *Service) GetLegalPerson(ctx context.Context, legalPersonURL string) (*domain.LegalPerson, error) {
	if err := requireURL("legal_person_url", legalPersonURL); err != nil {
		return nil, err
	}
	return s.client.GetLegalPerson(ctx, legalPersonURL)
}

func (s *Service) ListLegalPersons(ctx context.Context, filters domain.LegalPersonListFilters) (*domain.LegalPersonList, error) {
	return s.client.ListLegalPersons(ctx, filters)
}

// --- Payments ---

func (s *Service) GetPayment(ctx context.Context, paymentURL string) (*domain.Payment, error) {
	if err := requireURL("payment_url", paymentURL); err != nil {
		return nil, err
	}
	return s.client.GetPayment(ctx, paymentURL)
}

func (s *Service) ListPayments(ctx context.Context, filters domain.PaymentListFilters) (*domain.PaymentList, error) {
	return s.client.ListPayments(ctx, filters)
}

// CreateAndSubmitPayment runs the create-and-submit workflow.
func (s *Service) CreateAndSubmitPayment(ctx context.Context, in CreateAndSubmitInput) (*domain.PaymentWithSubmission, error) {
	return s.payments.CreateAndSubmit(ctx, in)
}

// ListOrphanedPayments returns journaled payments that were created but never submitted.
func (s *Service) ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error) {
	if limit <= 0 {
		limit = defaultOrphanReportLimit
	}
	records, err := s.repo.ListOrphanedPayments(ctx, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.PaymentWorkflowRecord{}
	}
	return records, nil
}

// ResolveOrphanedPayment marks an orphaned payment as handled. The payment itself is not touched.
func (s *Service) ResolveOrphanedPayment(ctx context.Context, workflowID string) error {
	if strings.TrimSpace(workflowID) == "" {
		return invalid("id", "is required")
	}
	if err := s.repo.ResolvePaymentWorkflow(ctx, workflowID); err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			return invalid("id", "no unresolved payment workflow with this id")
		}
		return err
	}
	return nil
}

// --- Payees ---

func (s *Service) GetPayee(ctx context.Context, payeeURL string) (*domain.Payee, error) {
	if err := requireURL("payee_url", payeeURL); err != nil {
		return nil, err
	}
	return s.client.GetPayee(ctx, payeeURL)
}

func (s *Service) ListPayees(ctx context.Context, legalPersonURL string) (*domain.PayeeList, error) {
	if err := requireURL("legal_person_url", legalPersonURL); err != nil {
		return nil, err
	}
	return s.client.ListPayees(ctx, legalPersonURL)
}
