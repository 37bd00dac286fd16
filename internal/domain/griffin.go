/**
 * @description
 * This file defines the Go structs that map to the JSON resources returned by the
 * Griffin banking API. Resources are addressed by the opaque URLs the API hands back
 * (e.g. "/v0/bank/accounts/ba.123"), never by client-constructed IDs.
 *
 * @notes
 * - Snapshots are read once per call. Nothing here is cached locally.
 */
package domain

import "encoding/json"

// Links carries the pagination links of a collection response.
type Links struct {
	Prev *string `json:"prev,omitempty"`
	Next *string `json:"next,omitempty"`
}

// Money is a monetary amount. Value is an opaque decimal string such as "10.50".
type Money struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// --- Index & API key ---

// Index is the response of GET /v0/index.
type Index struct {
	APIKeyURL        string `json:"api-key-url"`
	OrganizationURL  string `json:"organization-url"`
	OrganizationsURL string `json:"organizations-url"`
	RolesURL         string `json:"roles-url"`
	UsersURL         string `json:"users-url"`
}

// APIKey describes the key the client authenticates with.
type APIKey struct {
	APIKeyURL       string `json:"api-key-url"`
	APIKeyName      string `json:"api-key-name"`
	Live            bool   `json:"api-key-live?"`
	OrganizationURL string `json:"organization-url"`
	UserURL         string `json:"user-url"`
	CreatedAt       string `json:"created-at"`
}

// --- Bank accounts ---

// AccountStatus is the lifecycle state of a bank account.
type AccountStatus string

const (
	AccountStatusOpening AccountStatus = "opening"
	AccountStatusOpen    AccountStatus = "open"
	AccountStatusClosing AccountStatus = "closing"
	AccountStatusClosed  AccountStatus = "closed"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusOpening, AccountStatusOpen, AccountStatusClosing, AccountStatusClosed:
		return true
	}
	return false
}

// BankProductType is the product a bank account was opened under.
type BankProductType string

const (
	ProductSavingsAccount      BankProductType = "savings-account"
	ProductClientMoneyAccount  BankProductType = "client-money-account"
	ProductSafeguardingAccount BankProductType = "safeguarding-account"
	ProductEmbeddedAccount     BankProductType = "embedded-account"
	ProductOperationalAccount  BankProductType = "operational-account"
)

// Valid reports whether p is a known bank product type.
func (p BankProductType) Valid() bool {
	switch p {
	case ProductSavingsAccount, ProductClientMoneyAccount, ProductSafeguardingAccount,
		ProductEmbeddedAccount, ProductOperationalAccount:
		return true
	}
	return false
}

// BankAccount is a snapshot of a bank account resource.
type BankAccount struct {
	AccountURL      string          `json:"account-url"`
	AccountStatus   AccountStatus   `json:"account-status"`
	DisplayName     string          `json:"display-name,omitempty"`
	BankProductType BankProductType `json:"bank-product-type,omitempty"`
}

// OpenAccountRequest is the body POSTed to {organization}/bank/accounts.
type OpenAccountRequest struct {
	DisplayName     string          `json:"display-name"`
	BankProductType BankProductType `json:"bank-product-type"`
}

// BankAccountList is a page of bank accounts.
type BankAccountList struct {
	Accounts []BankAccount `json:"accounts"`
	Links    Links         `json:"links"`
	Included *struct {
		Beneficiaries []LegalPerson `json:"beneficiaries,omitempty"`
		Owners        []LegalPerson `json:"owners,omitempty"`
	} `json:"included,omitempty"`
}

// --- Legal persons ---

// ApplicationStatus is the onboarding state of a legal person.
type ApplicationStatus string

const (
	ApplicationReferred  ApplicationStatus = "referred"
	ApplicationErrored   ApplicationStatus = "errored"
	ApplicationDeclined  ApplicationStatus = "declined"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationAccepted  ApplicationStatus = "accepted"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationReferred, ApplicationErrored, ApplicationDeclined, ApplicationSubmitted, ApplicationAccepted:
		return true
	}
	return false
}

// LegalPerson is an individual or corporation known to the organization.
type LegalPerson struct {
	LegalPersonURL    string            `json:"legal-person-url"`
	DisplayName       string            `json:"display-name"`
	ApplicationStatus ApplicationStatus `json:"application-status,omitempty"`
}

// LegalPersonList is a page of legal persons.
type LegalPersonList struct {
	LegalPersons []LegalPerson `json:"legal-persons"`
	Links        Links         `json:"links"`
	Included     *struct {
		LatestVerification json.RawMessage `json:"latest-verification,omitempty"`
		LatestRiskRating   json.RawMessage `json:"latest-risk-rating,omitempty"`
	} `json:"included,omitempty"`
}

// --- Payments ---

// PaymentDirection tells whether money moves into or out of an account.
type PaymentDirection string

const (
	PaymentInbound  PaymentDirection = "inbound-payment"
	PaymentOutbound PaymentDirection = "outbound-payment"
)

// Valid reports whether d is a known payment direction.
func (d PaymentDirection) Valid() bool {
	return d == PaymentInbound || d == PaymentOutbound
}

// PaymentScheme is the settlement rail a payment is submitted to.
type PaymentScheme string

const (
	SchemeFPS          PaymentScheme = "fps"
	SchemeBookTransfer PaymentScheme = "book-transfer"
)

// Valid reports whether s is one of the supported schemes.
func (s PaymentScheme) Valid() bool {
	return s == SchemeFPS || s == SchemeBookTransfer
}

// Payment is a snapshot of a payment resource.
type Payment struct {
	PaymentURL       string           `json:"payment-url"`
	PaymentDirection PaymentDirection `json:"payment-direction,omitempty"`
	PaymentAmount    Money            `json:"payment-amount"`
	PaymentReference string           `json:"payment-reference,omitempty"`
}

// CreatePaymentRequest is the body POSTed to {account}/payments.
type CreatePaymentRequest struct {
	Creditor         Creditor `json:"creditor"`
	PaymentAmount    Money    `json:"payment-amount"`
	PaymentReference string   `json:"payment-reference,omitempty"`
}

// SubmitPaymentRequest is the body POSTed to {payment}/submissions.
type SubmitPaymentRequest struct {
	PaymentScheme PaymentScheme `json:"payment-scheme"`
}

// SchemeInformation is the scheme-specific part of a submission.
type SchemeInformation struct {
	PaymentScheme               PaymentScheme `json:"payment-scheme"`
	EndToEndIdentification      string        `json:"end-to-end-identification,omitempty"`
	SchemeStatusCode            string        `json:"scheme-status-code,omitempty"`
	SchemeStatusCodeDescription string        `json:"scheme-status-code-description,omitempty"`
}

// Submission records a payment being sent to a scheme.
type Submission struct {
	SubmissionURL               string             `json:"submission-url"`
	SubmissionStatus            string             `json:"submission-status"`
	PaymentURL                  string             `json:"payment-url"`
	UniqueSchemeIdentifier      string             `json:"unique-scheme-identifier,omitempty"`
	SubmissionSchemeInformation *SchemeInformation `json:"submission-scheme-information,omitempty"`
	AccountURL                  string             `json:"account-url"`
	CreatedAt                   string             `json:"created-at"`
}

// PaymentWithSubmission is the result of a successful create-and-submit.
type PaymentWithSubmission struct {
	Payment    Payment    `json:"payment"`
	Submission Submission `json:"submission"`
}

// PaymentList is a page of payments.
type PaymentList struct {
	Payments []Payment `json:"payments"`
	Links    Links     `json:"links"`
	Included *struct {
		BankAccount      *BankAccount    `json:"bank-account,omitempty"`
		LatestSubmission json.RawMessage `json:"latest-submission,omitempty"`
		RejectedBy       json.RawMessage `json:"rejected-by,omitempty"`
		CreatedBy        json.RawMessage `json:"created-by,omitempty"`
	} `json:"included,omitempty"`
}

// --- Payees ---

// Payee is a saved external destination for payments.
type Payee struct {
	PayeeURL       string `json:"payee-url"`
	AccountHolder  string `json:"account-holder"`
	AccountNumber  string `json:"account-number"`
	BankID         string `json:"bank-id"`
	LegalPersonURL string `json:"legal-person-url"`
	CreatedAt      string `json:"created-at"`
	PayeeStatus    string `json:"payee-status"`
	CountryCode    string `json:"country-code"`
	AccountURL     string `json:"account-url,omitempty"`
	CopRequestURL  string `json:"cop-request-url,omitempty"`
}

// PayeeList is a page of payees.
type PayeeList struct {
	Payees   []Payee `json:"payees"`
	Links    Links   `json:"links"`
	Included *struct {
		CopRequests json.RawMessage `json:"cop-requests,omitempty"`
	} `json:"included,omitempty"`
}

// --- Transactions ---

// Transaction is a single ledger movement on an account.
type Transaction struct {
	AccountTransactionURL  string `json:"account-transaction-url"`
	ProcessedAt            string `json:"processed-at"`
	PostDatetime           string `json:"post-datetime"`
	BalanceChangeDirection string `json:"balance-change-direction"`
	EffectiveAt            string `json:"effective-at"`
	TransactionOriginType  string `json:"transaction-origin-type"`
	PaymentURL             string `json:"payment-url,omitempty"`
	Reference              string `json:"reference,omitempty"`
	AccountURL             string `json:"account-url"`
	BalanceChange          Money  `json:"balance-change"`
	AccountBalance         Money  `json:"account-balance"`
	Description            string `json:"description,omitempty"`
}

// TransactionList is a page of account transactions.
type TransactionList struct {
	AccountTransactions []Transaction `json:"account-transactions"`
	Links               Links         `json:"links"`
	Included            *struct {
		Payment *Payment `json:"payment,omitempty"`
	} `json:"included,omitempty"`
}
