package griffinclient

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/transfa/griffin-service/internal/domain"
)

// query accumulates key=value pairs in insertion order. Keys are written verbatim
// (bracketed filter keys must reach the API unescaped); values are percent-encoded.
type query struct {
	parts []string
}

func (q *query) add(key, value string) {
	q.parts = append(q.parts, key+"="+encodeValue(value))
}

func (q *query) include(resources ...string) {
	for _, r := range resources {
		q.add("include[]", r)
	}
}

func (q *query) sort(s string) {
	if strings.TrimSpace(s) == "" {
		s = domain.DefaultSort
	}
	q.add("sort", s)
}

func (q *query) String() string {
	return strings.Join(q.parts, "&")
}

// encodeValue escapes like JavaScript's encodeURIComponent for the characters the API
// cares about: reserved characters become %XX and spaces become %20.
func encodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// BankAccountsQuery encodes the query string for listing bank accounts.
func BankAccountsQuery(f domain.BankAccountListFilters) string {
	var q query
	q.include("beneficiary", "owner")
	q.sort(f.Sort)
	for _, status := range f.Statuses {
		q.add("filter[account-status][in][]", string(status))
	}
	for _, product := range f.ProductTypes {
		q.add("filter[bank-product-type][in][]", string(product))
	}
	if f.PooledFunds != nil {
		q.add("filter[pooled-funds][eq]", strconv.FormatBool(*f.PooledFunds))
	}
	if f.BeneficiaryURL != "" {
		q.add("filter[beneficiary-url][eq]", f.BeneficiaryURL)
	}
	if f.OwnerURL != "" {
		q.add("filter[owner-url][eq]", f.OwnerURL)
	}
	return q.String()
}

// LegalPersonsQuery encodes the query string for listing legal persons.
func LegalPersonsQuery(f domain.LegalPersonListFilters) string {
	var q query
	q.include("latest-verification", "latest-risk-rating")
	q.sort(f.Sort)
	if f.ApplicationStatus != "" {
		q.add("filter[application-status][eq]", string(f.ApplicationStatus))
	}
	return q.String()
}

// PaymentsQuery encodes the query string for listing payments.
func PaymentsQuery(f domain.PaymentListFilters) string {
	var q query
	q.include("bank-account", "latest-submission", "rejected-by", "created-by")
	q.sort(f.Sort)
	if f.Direction != "" {
		q.add("filter[payment-direction][eq]", string(f.Direction))
	}
	if f.Rejected != nil {
		q.add("filter[rejected][eq]", strconv.FormatBool(*f.Rejected))
	}
	if f.CreatedAfter != "" {
		q.add("filter[created-at][gt]", f.CreatedAfter)
	}
	if f.CreatedBefore != "" {
		q.add("filter[created-at][lt]", f.CreatedBefore)
	}
	return q.String()
}

// PayeesQuery encodes the query string for listing a legal person's payees.
func PayeesQuery() string {
	var q query
	q.include("cop-requests")
	return q.String()
}

// TransactionsQuery encodes the query string for listing account transactions.
func TransactionsQuery(limit int) string {
	var q query
	q.add("page[size]", strconv.Itoa(limit))
	return q.String()
}
