package domain

// DefaultSort orders collections newest first.
const DefaultSort = "-created-at"

// BankAccountListFilters narrows a bank account listing. Zero-valued fields are not sent.
type BankAccountListFilters struct {
	Statuses       []AccountStatus
	ProductTypes   []BankProductType
	PooledFunds    *bool
	BeneficiaryURL string
	OwnerURL       string
	Sort           string
}

// LegalPersonListFilters narrows a legal person listing.
type LegalPersonListFilters struct {
	ApplicationStatus ApplicationStatus
	Sort              string
}

// PaymentListFilters narrows a payment listing. CreatedAfter and CreatedBefore are
// ISO-8601 timestamps passed through verbatim.
type PaymentListFilters struct {
	Direction     PaymentDirection
	Rejected      *bool
	CreatedAfter  string
	CreatedBefore string
	Sort          string
}

// Sort orders accepted by each collection.
var (
	BankAccountSorts = []string{"-created-at", "created-at"}
	LegalPersonSorts = []string{"-status-changed-at", "status-changed-at", "-created-at", "created-at"}
	PaymentSorts     = []string{"-created-at", "created-at"}
)

// SortAllowed reports whether sort is empty or one of allowed.
func SortAllowed(sort string, allowed []string) bool {
	if sort == "" {
		return true
	}
	for _, a := range allowed {
		if sort == a {
			return true
		}
	}
	return false
}
