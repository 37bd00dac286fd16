package app

import (
	"context"

	"github.com/transfa/griffin-service/internal/domain"
)

// GriffinClient is the subset of the Griffin API client the application depends on.
// *griffinclient.Client implements it.
type GriffinClient interface {
	GetIndex(ctx context.Context) (*domain.Index, error)
	GetAPIKey(ctx context.Context, apiKeyURL string) (*domain.APIKey, error)
	GetBankAccount(ctx context.Context, accountURL string) (*domain.BankAccount, error)
	GetLegalPerson(ctx context.Context, legalPersonURL string) (*domain.LegalPerson, error)
	GetPayment(ctx context.Context, paymentURL string) (*domain.Payment, error)
	GetPayee(ctx context.Context, payeeURL string) (*domain.Payee, error)
	ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error)
	ListBankAccounts(ctx context.Context, filters domain.BankAccountListFilters) (*domain.BankAccountList, error)
	ListLegalPersons(ctx context.Context, filters domain.LegalPersonListFilters) (*domain.LegalPersonList, error)
	ListPayments(ctx context.Context, filters domain.PaymentListFilters) (*domain.PaymentList, error)
	ListPayees(ctx context.Context, legalPersonURL string) (*domain.PayeeList, error)
	CreatePayment(ctx context.Context, sourceAccountURL string, req domain.CreatePaymentRequest) (*domain.Payment, error)
	SubmitPayment(ctx context.Context, paymentURL string, scheme domain.PaymentScheme) (*domain.Submission, error)
	OpenAccount(ctx context.Context, displayName string, product domain.BankProductType) (*domain.BankAccount, error)
}

// EventPublisher publishes workflow events. *rabbitmq.EventProducer implements it.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}
