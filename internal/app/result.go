package app

import (
	"errors"

	"github.com/transfa/griffin-service/internal/domain"
	"github.com/transfa/griffin-service/pkg/griffinclient"
)

// ErrorKind classifies a failed Result.
type ErrorKind string

const (
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindAPI            ErrorKind = "api"
	ErrorKindPartialPayment ErrorKind = "partial_payment"
	ErrorKindInternal       ErrorKind = "internal"
)

// Result is the uniform shape every boundary operation returns.
// StatusCode is the remote API's HTTP status when the failure came from it.
// Payment is set only for partial payments.
type Result struct {
	Success    bool            `json:"success" yaml:"success"`
	Data       interface{}     `json:"data,omitempty" yaml:"data,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind  ErrorKind       `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	StatusCode int             `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Payment    *domain.Payment `json:"payment,omitempty" yaml:"payment,omitempty"`
}

// NewResult converts an operation outcome into a Result.
func NewResult(data interface{}, err error) Result {
	if err == nil {
		return Result{Success: true, Data: data}
	}

	res := Result{Success: false, Error: err.Error(), ErrorKind: ErrorKindInternal}

	var apiErr *griffinclient.APIError
	if errors.As(err, &apiErr) {
		res.ErrorKind = ErrorKindAPI
		res.StatusCode = apiErr.StatusCode
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		res.ErrorKind = ErrorKindValidation
	}

	var partialErr *PartialPaymentError
	if errors.As(err, &partialErr) {
		res.ErrorKind = ErrorKindPartialPayment
		res.Payment = partialErr.Payment
	}

	return res
}
