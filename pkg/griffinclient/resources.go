package griffinclient

import (
	"context"
	"net/http"

	"github.com/transfa/griffin-service/internal/domain"
)

// GetIndex fetches the API index for the authenticated key.
func (c *Client) GetIndex(ctx context.Context) (*domain.Index, error) {
	var resp domain.Index
	if err := c.Fetch(ctx, http.MethodGet, "/v0/index", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAPIKey fetches the API key resource at apiKeyURL.
func (c *Client) GetAPIKey(ctx context.Context, apiKeyURL string) (*domain.APIKey, error) {
	var resp domain.APIKey
	if err := c.Fetch(ctx, http.MethodGet, apiKeyURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBankAccount fetches a single bank account.
func (c *Client) GetBankAccount(ctx context.Context, accountURL string) (*domain.BankAccount, error) {
	var resp domain.BankAccount
	if err := c.Fetch(ctx, http.MethodGet, accountURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLegalPerson fetches a single legal person.
func (c *Client) GetLegalPerson(ctx context.Context, legalPersonURL string) (*domain.LegalPerson, error) {
	var resp domain.LegalPerson
	if err := c.Fetch(ctx, http.MethodGet, legalPersonURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPayment fetches a single payment.
func (c *Client) GetPayment(ctx context.Context, paymentURL string) (*domain.Payment, error) {
	var resp domain.Payment
	if err := c.Fetch(ctx, http.MethodGet, paymentURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPayee fetches a single payee.
func (c *Client) GetPayee(ctx context.Context, payeeURL string) (*domain.Payee, error) {
	var resp domain.Payee
	if err := c.Fetch(ctx, http.MethodGet, payeeURL, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTransactions fetches up to limit transactions of an account.
func (c *Client) ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error) {
	var resp domain.TransactionList
	endpoint := accountURL + "/transactions?" + TransactionsQuery(limit)
	if err := c.Fetch(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBankAccounts lists the organization's bank accounts.
func (c *Client) ListBankAccounts(ctx context.Context, filters domain.BankAccountListFilters) (*domain.BankAccountList, error) {
	org, err := c.OrganizationURL(ctx)
	if err != nil {
		return nil, err
	}
	var resp domain.BankAccountList
	if err := c.Fetch(ctx, http.MethodGet, org+"/bank/accounts?"+BankAccountsQuery(filters), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLegalPersons lists the organization's legal persons.
func (c *Client) ListLegalPersons(ctx context.Context, filters domain.LegalPersonListFilters) (*domain.LegalPersonList, error) {
	org, err := c.OrganizationURL(ctx)
	if err != nil {
		return nil, err
	}
	var resp domain.LegalPersonList
	if err := c.Fetch(ctx, http.MethodGet, org+"/legal-persons?"+LegalPersonsQuery(filters), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPayments lists the organization's payments.
func (c *Client) ListPayments(ctx context.Context, filters domain.PaymentListFilters) (*domain.PaymentList, error) {
	org, err := c.OrganizationURL(ctx)
	if err != nil {
		return nil, err
	}
	var resp domain.PaymentList
	if err := c.Fetch(ctx, http.MethodGet, org+"/payments?"+PaymentsQuery(filters), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPayees lists the payees of a legal person.
func (c *Client) ListPayees(ctx context.Context, legalPersonURL string) (*domain.PayeeList, error) {
	var resp domain.PayeeList
	if err := c.Fetch(ctx, http.MethodGet, legalPersonURL+"/bank/payees?"+PayeesQuery(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePayment creates (but does not submit) a payment from sourceAccountURL.
func (c *Client) CreatePayment(ctx context.Context, sourceAccountURL string, req domain.CreatePaymentRequest) (*domain.Payment, error) {
	var resp domain.Payment
	if err := c.Fetch(ctx, http.MethodPost, sourceAccountURL+"/payments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitPayment submits a created payment to a payment scheme.
func (c *Client) SubmitPayment(ctx context.Context, paymentURL string, scheme domain.PaymentScheme) (*domain.Submission, error) {
	var resp domain.Submission
	body := domain.SubmitPaymentRequest{PaymentScheme: scheme}
	if err := c.Fetch(ctx, http.MethodPost, paymentURL+"/submissions", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenAccount asks the API to open a new bank account for the organization.
func (c *Client) OpenAccount(ctx context.Context, displayName string, product domain.BankProductType) (*domain.BankAccount, error) {
	org, err := c.OrganizationURL(ctx)
	if err != nil {
		return nil, err
	}
	var resp domain.BankAccount
	body := domain.OpenAccountRequest{DisplayName: displayName, BankProductType: product}
	if err := c.Fetch(ctx, http.MethodPost, org+"/bank/accounts", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
