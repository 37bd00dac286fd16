/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * Defining interfaces allows for dependency injection and easy mocking in tests,
 * promoting a loosely coupled architecture.
 *
 * @notes
 * - The store is an operator journal of workflow runs. It never caches remote
 *   resources; every resource read goes to the Griffin API.
 */
package store

import (
	"context"
	"errors"

	"github.com/transfa/griffin-service/internal/domain"
)

// ErrWorkflowNotFound is returned when a payment workflow record does not exist.
var ErrWorkflowNotFound = errors.New("payment workflow not found")

// WorkflowRepository defines the contract for journaling workflow runs.
type WorkflowRepository interface {
	RecordPaymentWorkflow(ctx context.Context, record *domain.PaymentWorkflowRecord) error
	RecordAccountProvisioning(ctx context.Context, record *domain.AccountProvisioningRecord) error
	ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error)
	ResolvePaymentWorkflow(ctx context.Context, id string) error
}

// NoopWorkflowRepository discards every record. It is used when no database is configured.
type NoopWorkflowRepository struct{}

func (NoopWorkflowRepository) RecordPaymentWorkflow(ctx context.Context, record *domain.PaymentWorkflowRecord) error {
	return nil
}

func (NoopWorkflowRepository) RecordAccountProvisioning(ctx context.Context, record *domain.AccountProvisioningRecord) error {
	return nil
}

func (NoopWorkflowRepository) ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error) {
	return nil, nil
}

func (NoopWorkflowRepository) ResolvePaymentWorkflow(ctx context.Context, id string) error {
	return ErrWorkflowNotFound
}
