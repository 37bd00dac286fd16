package domain

import (
	"encoding/json"
	"fmt"
)

// CreditorType tags which variant a Creditor holds.
type CreditorType string

const (
	CreditorPayee       CreditorType = "payee"
	CreditorBankAccount CreditorType = "griffin-bank-account"
	CreditorUKDomestic  CreditorType = "uk-domestic"
)

// Fixed encodings for UK domestic account identifiers.
const (
	AccountNumberCodeBBAN = "bban"
	BankIDCodeGBDSC       = "gbdsc"
)

// UKDomesticAccount identifies an external UK account by holder, account number and sort code.
type UKDomesticAccount struct {
	AccountHolder string
	AccountNumber string
	BankID        string
}

// Creditor is the destination of a payment. Exactly one variant is populated and the
// zero value is invalid; build one with NewPayeeCreditor, NewBankAccountCreditor or
// NewUKDomesticCreditor.
type Creditor struct {
	kind     CreditorType
	payeeURL string
	account  string
	domestic UKDomesticAccount
}

// NewPayeeCreditor targets an existing payee.
func NewPayeeCreditor(payeeURL string) Creditor {
	return Creditor{kind: CreditorPayee, payeeURL: payeeURL}
}

// NewBankAccountCreditor targets another account in the same organization.
func NewBankAccountCreditor(accountURL string) Creditor {
	return Creditor{kind: CreditorBankAccount, account: accountURL}
}

// NewUKDomesticCreditor targets an external UK account.
func NewUKDomesticCreditor(acct UKDomesticAccount) Creditor {
	return Creditor{kind: CreditorUKDomestic, domestic: acct}
}

// Type returns the variant tag.
func (c Creditor) Type() CreditorType { return c.kind }

// PayeeURL returns the payee reference of a payee creditor.
func (c Creditor) PayeeURL() string { return c.payeeURL }

// AccountURL returns the account reference of a griffin-bank-account creditor.
func (c Creditor) AccountURL() string { return c.account }

// UKDomestic returns the external account of a uk-domestic creditor.
func (c Creditor) UKDomestic() UKDomesticAccount { return c.domestic }

type payeeCreditorWire struct {
	CreditorType CreditorType `json:"creditor-type"`
	PayeeURL     string       `json:"payee-url"`
}

type bankAccountCreditorWire struct {
	CreditorType CreditorType `json:"creditor-type"`
	AccountURL   string       `json:"account-url"`
}

type ukDomesticCreditorWire struct {
	CreditorType      CreditorType `json:"creditor-type"`
	AccountHolder     string       `json:"account-holder"`
	AccountNumber     string       `json:"account-number"`
	AccountNumberCode string       `json:"account-number-code"`
	BankID            string       `json:"bank-id"`
	BankIDCode        string       `json:"bank-id-code"`
}

// MarshalJSON writes only the fields of the populated variant.
func (c Creditor) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CreditorPayee:
		return json.Marshal(payeeCreditorWire{CreditorType: c.kind, PayeeURL: c.payeeURL})
	case CreditorBankAccount:
		return json.Marshal(bankAccountCreditorWire{CreditorType: c.kind, AccountURL: c.account})
	case CreditorUKDomestic:
		return json.Marshal(ukDomesticCreditorWire{
			CreditorType:      c.kind,
			AccountHolder:     c.domestic.AccountHolder,
			AccountNumber:     c.domestic.AccountNumber,
			AccountNumberCode: AccountNumberCodeBBAN,
			BankID:            c.domestic.BankID,
			BankIDCode:        BankIDCodeGBDSC,
		})
	default:
		return nil, fmt.Errorf("creditor has no variant")
	}
}
