/**
 * @description
 * This file defines the HTTP handlers for the griffin-service's API endpoints.
 * Handlers are responsible for parsing requests, calling the appropriate service
 * method, and writing the response.
 *
 * @notes
 * - Every response body is an app.Result. The HTTP status is derived from its kind:
 *   200 success, 400 validation, 502 remote API error, 207 partial payment, 500 internal.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/transfa/griffin-service/internal/app"
	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/pkg/middleware"
)

const maxRequestBodyBytes = 1 << 20

// Service is the application surface the handlers call. *app.Service implements it.
type Service interface {
	GetBankAccount(ctx context.Context, accountURL string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context, filters domain.BankAccountListFilters) (*domain.BankAccountList, error)
	ListTransactions(ctx context.Context, accountURL string, limit int) (*domain.TransactionList, error)
	OpenOperationalAccount(ctx context.Context, displayName string) (*domain.BankAccount, error)
	GetLegalPerson(ctx context.Context, legalPersonURL string) (*domain.LegalPerson, error)
	ListLegalPersons(ctx context.Context, filters domain.LegalPersonListFilters) (*domain.LegalPersonList, error)
	GetPayment(ctx context.Context, paymentURL string) (*domain.Payment, error)
	ListPayments(ctx context.Context, filters domain.PaymentListFilters) (*domain.PaymentList, error)
	CreateAndSubmitPayment(ctx context.Context, in app.CreateAndSubmitInput) (*domain.PaymentWithSubmission, error)
	ListOrphanedPayments(ctx context.Context, limit int) ([]domain.PaymentWorkflowRecord, error)
	ResolveOrphanedPayment(ctx context.Context, workflowID string) error
	GetPayee(ctx context.Context, payeeURL string) (*domain.Payee, error)
	ListPayees(ctx context.Context, legalPersonURL string) (*domain.PayeeList, error)
}

// Handler holds the dependencies for the API handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// statusForResult maps a Result to the HTTP status of the response.
func statusForResult(res app.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.ErrorKind {
	case app.ErrorKindValidation:
		return http.StatusBadRequest
	case app.ErrorKindAPI:
		return http.StatusBadGateway
	case app.ErrorKindPartialPayment:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	res := app.NewResult(data, err)
	status := statusForResult(res)
	if status >= http.StatusInternalServerError || status == http.StatusMultiStatus {
		h.logger.Error("request failed", "component", "api", "method", r.Method, "path", r.URL.Path,
			"kind", res.ErrorKind, "err", err)
	}
	writeJSON(w, status, res)
}

func validation(field, message string) error {
	return &app.ValidationError{Field: field, Message: message}
}

// queryValues returns every value of key, splitting comma-separated entries.
func queryValues(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, validation(key, "must be true or false")
	}
	return &v, nil
}

func querySort(r *http.Request, allowed []string) (string, error) {
	sort := strings.TrimSpace(r.URL.Query().Get("sort"))
	if !domain.SortAllowed(sort, allowed) {
		return "", validation("sort", fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	}
	if sort == "" {
		sort = domain.DefaultSort
	}
	return sort, nil
}

// --- Bank accounts ---

// ListBankAccounts lists bank accounts. Without a status filter only open accounts are returned.
func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	filters, err := parseBankAccountFilters(r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	list, err := h.service.ListBankAccounts(r.Context(), filters)
	h.respond(w, r, list, err)
}

func parseBankAccountFilters(r *http.Request) (domain.BankAccountListFilters, error) {
	var f domain.BankAccountListFilters

	statuses := queryValues(r, "status")
	if len(statuses) == 0 {
		statuses = []string{string(domain.AccountStatusOpen)}
	}
	for _, s := range statuses {
		status := domain.AccountStatus(s)
		if !status.Valid() {
			return f, validation("status", fmt.Sprintf("unknown account status %q", s))
		}
		f.Statuses = append(f.Statuses, status)
	}

	for _, p := range queryValues(r, "product_type") {
		product := domain.BankProductType(p)
		if !product.Valid() {
			return f, validation("product_type", fmt.Sprintf("unknown bank product type %q", p))
		}
		f.ProductTypes = append(f.ProductTypes, product)
	}

	pooled, err := queryBool(r, "pooled_funds")
	if err != nil {
		return f, err
	}
	f.PooledFunds = pooled
	f.BeneficiaryURL = strings.TrimSpace(r.URL.Query().Get("beneficiary_url"))
	f.OwnerURL = strings.TrimSpace(r.URL.Query().Get("owner_url"))

	f.Sort, err = querySort(r, domain.BankAccountSorts)
	return f, err
}

func (h *Handler) GetBankAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetBankAccount(r.Context(), r.URL.Query().Get("url"))
	h.respond(w, r, account, err)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respond(w, r, nil, validation("limit", "must be an integer"))
			return
		}
		limit = parsed
	}
	list, err := h.service.ListTransactions(r.Context(), r.URL.Query().Get("account_url"), limit)
	h.respond(w, r, list, err)
}

// OpenOperationalAccountRequest defines the expected JSON body for opening an account.
type OpenOperationalAccountRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *Handler) OpenOperationalAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenOperationalAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respond(w, r, nil, err)
		return
	}
	account, err := h.service.OpenOperationalAccount(r.Context(), req.DisplayName)
	h.respond(w, r, account, err)
}

// --- Legal persons ---

func (h *Handler) ListLegalPersons(w http.ResponseWriter, r *http.Request) {
	var f domain.LegalPersonListFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("application_status")); raw != "" {
		f.ApplicationStatus = domain.ApplicationStatus(raw)
		if !f.ApplicationStatus.Valid() {
			h.respond(w, r, nil, validation("application_status", fmt.Sprintf("unknown application status %q", raw)))
			return
		}
	}
	sort, err := querySort(r, domain.LegalPersonSorts)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	f.Sort = sort

	list, err := h.service.ListLegalPersons(r.Context(), f)
	h.respond(w, r, list, err)
}

func (h *Handler) GetLegalPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.service.GetLegalPerson(r.Context(), r.URL.Query().Get("url"))
	h.respond(w, r, person, err)
}

// --- Payments ---

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var f domain.PaymentListFilters
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("direction")); raw != "" {
		f.Direction = domain.PaymentDirection(raw)
		if !f.Direction.Valid() {
			h.respond(w, r, nil, validation("direction", fmt.Sprintf("unknown payment direction %q", raw)))
			return
		}
	}
	rejected, err := queryBool(r, "rejected")
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	f.Rejected = rejected
	f.CreatedAfter = strings.TrimSpace(q.Get("created_after"))
	f.CreatedBefore = strings.TrimSpace(q.Get("created_before"))
	if f.Sort, err = querySort(r, domain.PaymentSorts); err != nil {
		h.respond(w, r, nil, err)
		return
	}

	list, err := h.service.ListPayments(r.Context(), f)
	h.respond(w, r, list, err)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetPayment(r.Context(), r.URL.Query().Get("url"))
	h.respond(w, r, payment, err)
}

// CreatePayment runs create-and-submit. Currency defaults to GBP.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var in app.CreateAndSubmitInput
	if err := decodeBody(w, r, &in); err != nil {
		h.respond(w, r, nil, err)
		return
	}
	if in.Currency == "" {
		in.Currency = "GBP"
	}

	h.logger.Info("create-and-submit requested", "component", "api",
		"subject", middleware.GetSubjectFromContext(r.Context()),
		"source_account_url", in.SourceAccountURL, "scheme", in.Scheme)

	result, err := h.service.CreateAndSubmitPayment(r.Context(), in)
	h.respond(w, r, result, err)
}

func (h *Handler) ListOrphanedPayments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.respond(w, r, nil, validation("limit", "must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	records, err := h.service.ListOrphanedPayments(r.Context(), limit)
	h.respond(w, r, records, err)
}

func (h *Handler) ResolveOrphanedPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.service.ResolveOrphanedPayment(r.Context(), id)
	h.respond(w, r, map[string]string{"id": id, "status": "resolved"}, err)
}

// --- Payees ---

func (h *Handler) ListPayees(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPayees(r.Context(), r.URL.Query().Get("legal_person_url"))
	h.respond(w, r, list, err)
}

func (h *Handler) GetPayee(w http.ResponseWriter, r *http.Request) {
	payee, err := h.service.GetPayee(r.Context(), r.URL.Query().Get("url"))
	h.respond(w, r, payee, err)
}

// decodeBody decodes a JSON request body. An empty body leaves target untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validation("body", "invalid request body: "+err.Error())
	}
	return nil
}

// writeJSON is a helper to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful can be written.
		slog.Error("failed to encode response", "component", "api", "err", err)
	}
}
