// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

// FundsError tells the client which till fell short and that the purchase
// can be recorded as debt instead.
type FundsError struct {
	Detail    string `json:"detail"`
	Method    string `json:"method"`
	Currency  string `json:"currency"`
	Required  string `json:"required"`
	Available string `json:"available"`
	Fallback  string `json:"fallback"`
}

// ErrBusy means another ledger write holds the lock; the client may retry.
var ErrBusy = errors.New("another ledger write is in progress, retry shortly")

// FromError maps a domain error to an HTTP status and a client-safe body.
// Errors it does not recognise become a generic 500.
func FromError(err error) (int, any) {
	var verr *ledger.ValidationError
	var funds *ledger.InsufficientFundsError
	var nf *ledger.NotFoundError
	var cfg *ledger.ConfigurationError

	switch {
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable, New(ErrBusy.Error())
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, NewValidation(verr.Fields)
	case errors.As(err, &funds):
		return http.StatusConflict, &FundsError{
			Detail:    funds.Error(),
			Method:    string(funds.Method),
			Currency:  string(funds.Currency),
			Required:  funds.Required.StringFixed(2),
			Available: funds.Available.StringFixed(2),
			Fallback:  string(ledger.Debt),
		}
	case errors.As(err, &nf):
		return http.StatusNotFound, New(nf.Error())
	case errors.As(err, &cfg):
		return http.StatusInternalServerError, New(cfg.Error())
	}
	return http.StatusInternalServerError, New("Internal server error")
}
