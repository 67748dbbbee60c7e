package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine codes returned alongside every business error.
const (
	CodeValidation             = "ValidationError"
	CodeInsufficientFunds      = "InsufficientFunds"
	CodeVoucherInvalid         = "VoucherInvalid"
	CodeShippingUnavailable    = "ShippingUnavailable"
	CodeGatewayError           = "GatewayError"
	CodeConcurrencyConflict    = "ConcurrencyConflict"
	CodeIdempotentReplay       = "IdempotentReplay"
	CodeStateTransitionInvalid = "StateTransitionInvalid"
	CodeTransientFailure       = "TransientFailure"
	CodeNotFound               = "NotFound"
	CodeConservationViolation  = "ConservationViolation"
)

// Voucher rejection reasons, surfaced through AppError.Reason.
const (
	VoucherNotFound      = "not_found"
	VoucherInactive      = "inactive"
	VoucherNotStarted    = "not_started"
	VoucherExpired       = "expired"
	VoucherExhausted     = "exhausted"
	VoucherLimitReached  = "usage_limit_reached"
	VoucherBelowMinOrder = "below_min_order"
)

// AppError represents an application error with a machine code.
type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code string, status int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// ValidationFailed creates a validation error, rejected before any wallet is touched.
func ValidationFailed(message string, err error) *AppError {
	return NewAppError(CodeValidation, http.StatusBadRequest, message, err)
}

// InsufficientFundsError creates an insufficient funds error.
func InsufficientFundsError(message string) *AppError {
	return NewAppError(CodeInsufficientFunds, http.StatusUnprocessableEntity, message, nil)
}

// VoucherInvalidError creates a voucher rejection with a specific reason.
func VoucherInvalidError(reason, message string) *AppError {
	e := NewAppError(CodeVoucherInvalid, http.StatusUnprocessableEntity, message, nil)
	e.Reason = reason
	return e
}

// ShippingUnavailableError creates a shipping provider failure.
func ShippingUnavailableError(message string, err error) *AppError {
	return NewAppError(CodeShippingUnavailable, http.StatusServiceUnavailable, message, err)
}

// GatewayFailure creates a payment gateway failure.
func GatewayFailure(message string, err error) *AppError {
	return NewAppError(CodeGatewayError, http.StatusBadGateway, message, err)
}

// ConcurrencyConflictError is retryable; callers retry a bounded number of
// times before surfacing TransientFailure.
func ConcurrencyConflictError(message string) *AppError {
	return NewAppError(CodeConcurrencyConflict, http.StatusConflict, message, nil)
}

// StateTransitionError creates an invalid state transition error.
func StateTransitionError(message string) *AppError {
	return NewAppError(CodeStateTransitionInvalid, http.StatusConflict, message, nil)
}

// TransientFailureError wraps an infrastructure failure that exhausted retries.
func TransientFailureError(message string, err error) *AppError {
	return NewAppError(CodeTransientFailure, http.StatusServiceUnavailable, message, err)
}

// NotFoundAppError creates a 404 Not Found error
func NotFoundAppError(message string) *AppError {
	return NewAppError(CodeNotFound, http.StatusNotFound, message, nil)
}

// ConservationError marks a money-conservation invariant violation. Fatal
// for the operation: logged and aborted without partial commit.
func ConservationError(message string) *AppError {
	return NewAppError(CodeConservationViolation, http.StatusInternalServerError, message, nil)
}

// GetAppError returns the AppError if the error is (or wraps) an AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsCode checks whether an error carries the given machine code.
func IsCode(err error, code string) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
