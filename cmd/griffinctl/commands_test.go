package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/transfa/griffin-service/internal/app"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/pkg/griffinclient"
	"gopkg.in/yaml.v3"
)

type serviceStub struct {
	service

	bankFilters  domain.BankAccountListFilters
	paymentInput app.CreateAndSubmitInput
	txnLimit     int
	calls        int
	createErr    error
}

func (s *serviceStub) VerifySandboxKey(ctx context.Context) (*domain.APIKey, error) {
	s.calls++
	return &domain.APIKey{APIKeyName: "sandbox key"}, nil
}

func (s *serviceStub) ListBankAccounts(ctx context.Context, f domain.BankAccountListFilters) (*domain.BankAccountList, error) {
	s.calls++
	s.bankFilters = f
	return &domain.BankAccountList{Accounts: []domain.BankAccount{{AccountURL: "/v0/bank/accounts/1", AccountStatus: domain.AccountStatusOpen}}}, nil
}

func (s *serviceStub) ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error) {
	s.calls++
	s.txnLimit = limit
	return &domain.TransactionList{}, nil
}

func (s *serviceStub) CreateAndSubmitPayment(ctx context.Context, in app.CreateAndSubmitInput) (*domain.PaymentWithSubmission, error) {
	s.calls++
	s.paymentInput = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.PaymentWithSubmission{Payment: domain.Payment{PaymentURL: "/v0/payments/p1"}}, nil
}

func execute(t *testing.T, stub *serviceStub, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	build := func(ctx context.Context, logger *slog.Logger) (service, func(), error) {
		return stub, func() {}, nil
	}
	root := newRootCmd(build, &out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func decodeResult(t *testing.T, out string) app.Result {
	t.Helper()
	var res app.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a JSON result: %v\n%s", err, out)
	}
	return res
}

func TestVerifyKeyPrintsResult(t *testing.T) {
	stub := &serviceStub{}
	out, err := execute(t, stub, "verify-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := decodeResult(t, out)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !strings.Contains(out, `"api-key-name": "sandbox key"`) {
		t.Errorf("missing key name in output:\n%s", out)
	}
}

func TestAccountsListFlags(t *testing.T) {
	stub := &serviceStub{}
	_, err := execute(t, stub, "accounts", "list", "--status", "open,closed", "--pooled-funds", "false", "--sort", "created-at")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := stub.bankFilters
	if len(f.Statuses) != 2 || f.Statuses[1] != domain.AccountStatusClosed {
		t.Errorf("statuses = %v", f.Statuses)
	}
	if f.PooledFunds == nil || *f.PooledFunds {
		t.Errorf("pooled funds = %v", f.PooledFunds)
	}
	if f.Sort != "created-at" {
		t.Errorf("sort = %q", f.Sort)
	}
}

func TestAccountsListDefaultsToOpen(t *testing.T) {
	stub := &serviceStub{}
	if _, err := execute(t, stub, "accounts", "list"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.bankFilters.Statuses) != 1 || stub.bankFilters.Statuses[0] != domain.AccountStatusOpen {
		t.Errorf("statuses = %v", stub.bankFilters.Statuses)
	}
}

func TestInvalidFlagValuesNeverReachService(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "status", args: []string{"accounts", "list", "--status", "frozen"}},
		{name: "sort", args: []string{"accounts", "list", "--sort", "name"}},
		{name: "pooled funds", args: []string{"accounts", "list", "--pooled-funds", "sometimes"}},
		{name: "direction", args: []string{"payments", "list", "--direction", "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &serviceStub{}
			out, err := execute(t, stub, tt.args...)
			if !errors.Is(err, errFailedResult) {
				t.Fatalf("expected errFailedResult, got %v", err)
			}
			res := decodeResult(t, out)
			if res.ErrorKind != app.ErrorKindValidation {
				t.Errorf("error kind = %q", res.ErrorKind)
			}
			if stub.calls != 0 {
				t.Errorf("service called %d times", stub.calls)
			}
		})
	}
}

func TestTransactionsDefaultLimit(t *testing.T) {
	stub := &serviceStub{}
	if _, err := execute(t, stub, "accounts", "transactions", "/v0/bank/accounts/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.txnLimit != app.DefaultTransactionLimit {
		t.Errorf("limit = %d", stub.txnLimit)
	}
}

func TestPaymentsCreate(t *testing.T) {
	stub := &serviceStub{}
	_, err := execute(t, stub, "payments", "create",
		"--source", "/v0/bank/accounts/1", "--amount", "12.34",
		"--account-holder", "Jane Doe", "--account-number", "12345678", "--bank-id", "000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := stub.paymentInput
	if in.Currency != "GBP" || in.Scheme != domain.SchemeFPS || in.Amount != "12.34" || in.BankID != "000000" {
		t.Errorf("input = %+v", in)
	}
}

func TestPaymentsCreatePartialFailure(t *testing.T) {
	stub := &serviceStub{createErr: &app.PartialPaymentError{
		Payment: &domain.Payment{PaymentURL: "/v0/payments/p1"},
		Err:     &griffinclient.APIError{StatusCode: 422, Body: "rejected"},
	}}
	out, err := execute(t, stub, "payments", "create", "--source", "/s", "--amount", "1.00", "--payee-url", "/p")
	if !errors.Is(err, errFailedResult) {
		t.Fatalf("expected errFailedResult, got %v", err)
	}
	res := decodeResult(t, out)
	if res.ErrorKind != app.ErrorKindPartialPayment || res.Payment == nil || res.Payment.PaymentURL != "/v0/payments/p1" {
		t.Errorf("result = %+v", res)
	}
}

func TestYAMLOutput(t *testing.T) {
	stub := &serviceStub{}
	out, err := execute(t, stub, "accounts", "list", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "success: true\n") || strings.Contains(out, `"account-url"`) {
		t.Errorf("expected block style yaml:\n%s", out)
	}
	var doc struct {
		Success bool `yaml:"success"`
		Data    struct {
			Accounts []map[string]string `yaml:"accounts"`
		} `yaml:"data"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if !doc.Success || len(doc.Data.Accounts) != 1 || doc.Data.Accounts[0]["account-url"] != "/v0/bank/accounts/1" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, &serviceStub{}, "verify-key", "-o", "xml")
	if err == nil || errors.Is(err, errFailedResult) {
		t.Fatalf("expected a format error, got %v", err)
	}
}
