package app

import (
	"fmt"

	"github.com/transfa/griffin-service/internal/domain"
)

// ValidationError is returned when input is rejected before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PartialPaymentError is returned when a payment was created but its submission failed.
// The payment still exists upstream and has not been submitted to any scheme.
type PartialPaymentError struct {
	Payment *domain.Payment
	Err     error
}

func (e *PartialPaymentError) Error() string {
	return fmt.Sprintf("payment %s was created but submission failed: %v", e.Payment.PaymentURL, e.Err)
}

func (e *PartialPaymentError) Unwrap() error { return e.Err }
