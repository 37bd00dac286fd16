package app

import (
	"context"
	"errors"
	"testing"

	"github.com/transfa/griffin-service/internal/domain"
)

type provisionerStub struct {
	calls int
	name  string
	resp  *domain.BankAccount
	err   error
}

func (s *provisionerStub) OpenOperationalAccount(ctx context.Context, displayName string) (*domain.BankAccount, error) {
	s.calls++
	s.name = displayName
	return s.resp, s.err
}

func TestHandleAccountOpenRequested(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		wantCalls int
		wantName  string
	}{
		{name: "provisions with display name", body: `{"display_name":"Payroll"}`, wantCalls: 1, wantName: "Payroll"},
		{name: "empty body object uses provisioner default", body: `{}`, wantCalls: 1, wantName: ""},
		{name: "malformed json is acked without provisioning", body: `{not json`, wantCalls: 0},
		{name: "provisioning failure is acked", body: `{"display_name":"x"}`, err: errors.New("api down"), wantCalls: 1, wantName: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &provisionerStub{
				resp: &domain.BankAccount{AccountURL: "/v0/bank/accounts/ba.1", AccountStatus: domain.AccountStatusOpen},
				err:  tt.err,
			}
			h := NewAccountEventHandler(stub, discardLogger())

			if !h.HandleAccountOpenRequested([]byte(tt.body)) {
				t.Fatal("expected message to be acked")
			}
			if stub.calls != tt.wantCalls {
				t.Fatalf("expected %d provisioning calls, got %d", tt.wantCalls, stub.calls)
			}
			if stub.name != tt.wantName {
				t.Fatalf("expected display name %q, got %q", tt.wantName, stub.name)
			}
		})
	}
}
