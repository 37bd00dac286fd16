package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCreditor_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		creditor Creditor
		want     string
	}{
		{
			name:     "payee",
			creditor: NewPayeeCreditor("/v0/payees/pe.1"),
			want:     `{"creditor-type":"payee","payee-url":"/v0/payees/pe.1"}`,
		},
		{
			name:     "griffin bank account",
			creditor: NewBankAccountCreditor("/v0/bank/accounts/ba.2"),
			want:     `{"creditor-type":"griffin-bank-account","account-url":"/v0/bank/accounts/ba.2"}`,
		},
		{
			name: "uk domestic carries fixed identifier codes",
			creditor: NewUKDomesticCreditor(UKDomesticAccount{
				AccountHolder: "Jane Doe",
				AccountNumber: "12345678",
				BankID:        "040004",
			}),
			want: `{"creditor-type":"uk-domestic","account-holder":"Jane Doe","account-number":"12345678",` +
				`"account-number-code":"bban","bank-id":"040004","bank-id-code":"gbdsc"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.creditor)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("unexpected JSON\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestCreditor_ZeroValueDoesNotMarshal(t *testing.T) {
	if _, err := json.Marshal(CreatePaymentRequest{}); err == nil {
		t.Fatal("expected error marshalling a request without a creditor")
	}
}

func TestCreatePaymentRequest_OmitsEmptyReference(t *testing.T) {
	req := CreatePaymentRequest{
		Creditor:      NewPayeeCreditor("/v0/payees/pe.1"),
		PaymentAmount: Money{Currency: "GBP", Value: "10.50"},
	}
	got, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"creditor":{"creditor-type":"payee","payee-url":"/v0/payees/pe.1"},"payment-amount":{"currency":"GBP","value":"10.50"}}`
	if string(got) != want {
		t.Fatalf("unexpected JSON\n got: %s\nwant: %s", got, want)
	}
}

func TestPaymentScheme_Valid(t *testing.T) {
	for _, s := range []PaymentScheme{SchemeFPS, SchemeBookTransfer} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []PaymentScheme{"", "sepa", "FPS"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestPaymentWorkflowRecord_Orphaned(t *testing.T) {
	now := time.Now()
	tests := []struct {
		record PaymentWorkflowRecord
		want   bool
	}{
		{PaymentWorkflowRecord{Stage: StageSubmitFailed}, true},
		{PaymentWorkflowRecord{Stage: StageSubmitFailed, ResolvedAt: &now}, false},
		{PaymentWorkflowRecord{Stage: StageSubmitted}, false},
		{PaymentWorkflowRecord{Stage: StageCreateFailed}, false},
	}
	for _, tt := range tests {
		if got := tt.record.Orphaned(); got != tt.want {
			t.Errorf("Orphaned() for stage %q resolved=%v = %v, want %v",
				tt.record.Stage, tt.record.ResolvedAt != nil, got, tt.want)
		}
	}
}
