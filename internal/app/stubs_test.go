package app

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type griffinStub struct {
	GriffinClient

	createResp    *domain.Payment
	createErr     error
	createCalls   int
	createSource  string
	createRequest domain.CreatePaymentRequest

	submitResp    *domain.Submission
	submitErr     error
	submitCalls   int
	submitPayment string
	submitScheme  domain.PaymentScheme

	openResp    *domain.BankAccount
	openErr     error
	openCalls   int
	openName    string
	openProduct domain.BankProductType

	// polls is consumed in order by GetBankAccount; the last entry repeats.
	polls     []pollResult
	pollCalls int

	index    *domain.Index
	indexErr error
	apiKey   *domain.APIKey
	keyErr   error

	transactionsLimit int
	networkCalls      int
}

type pollResult struct {
	account *domain.BankAccount
	err     error
}

func (s *griffinStub) CreatePayment(ctx context.Context, sourceAccountURL string, req domain.CreatePaymentRequest) (*domain.Payment, error) {
	s.createCalls++
	s.networkCalls++
	s.createSource = sourceAccountURL
	s.createRequest = req
	return s.createResp, s.createErr
}

func (s *griffinStub) SubmitPayment(ctx context.Context, paymentURL string, scheme domain.PaymentScheme) (*domain.Submission, error) {
	s.submitCalls++
	s.networkCalls++
	s.submitPayment = paymentURL
	s.submitScheme = scheme
	return s.submitResp, s.submitErr
}

func (s *griffinStub) OpenAccount(ctx context.Context, displayName string, product domain.BankProductType) (*domain.BankAccount, error) {
	s.openCalls++
	s.networkCalls++
	s.openName = displayName
	s.openProduct = product
	return s.openResp, s.openErr
}

func (s *griffinStub) GetBankAccount(ctx context.Context, accountURL string) (*domain.BankAccount, error) {
	s.networkCalls++
	if len(s.polls) == 0 {
		return s.openResp, nil
	}
	i := s.pollCalls
	if i >= len(s.polls) {
		i = len(s.polls) - 1
	}
	s.pollCalls++
	return s.polls[i].account, s.polls[i].err
}

func (s *griffinStub) GetIndex(ctx context.Context) (*domain.Index, error) {
	s.networkCalls++
	return s.index, s.indexErr
}

func (s *griffinStub) GetAPIKey(ctx context.Context, apiKeyURL string) (*domain.APIKey, error) {
	s.networkCalls++
	return s.apiKey, s.keyErr
}

func (s *griffinStub) ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error) {
	s.networkCalls++
	s.transactionsLimit = limit
	return &domain.TransactionList{}, nil
}

func (s *griffinStub) GetPayment(ctx context.Context, paymentURL string) (*domain.Payment, error) {
	s.networkCalls++
	return &domain.Payment{PaymentURL: paymentURL}, nil
}

func (s *griffinStub) ListPayees(ctx context.Context, legalPersonURL string) (*domain.PayeeList, error) {
	s.networkCalls++
	return &domain.PayeeList{}, nil
}

type repoStub struct {
	store.WorkflowRepository

	mu            sync.Mutex
	payments      []domain.PaymentWorkflowRecord
	provisionings []domain.AccountProvisioningRecord
	recordErr     error

	orphans    []domain.PaymentWorkflowRecord
	orphansErr error
	resolveErr error
	resolvedID string
}

func (s *repoStub) RecordPaymentWorkflow(ctx context.Context, record *domain.PaymentWorkflowRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *record)
	return s.recordErr
}

func (s *repoStub) RecordAccountProvisioning(ctx context.Context, record *domain.AccountProvisioningRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provisionings = append(s.provisionings, *record)
	return s.recordErr
}

func (s *repoStub) ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error) {
	return s.orphans, s.orphansErr
}

func (s *repoStub) ResolvePaymentWorkflow(ctx context.Context, id string) error {
	s.resolvedID = id
	return s.resolveErr
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

type publisherStub struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (s *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return s.err
}
