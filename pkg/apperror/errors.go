package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WAL) ----

func ErrWalletNotFound(id string) *AppError {
	return New("WAL_001", fmt.Sprintf("wallet %s not found", id), http.StatusNotFound)
}

func ErrMalformedWallet(err error) *AppError {
	return Wrap("WAL_002", "Malformed wallet document", http.StatusBadRequest, err)
}

func ErrIdentityMismatch(err error) *AppError {
	return Wrap("WAL_003", "Wallet identity does not match", http.StatusConflict, err)
}

func ErrInvalidWalletID(id string) *AppError {
	return New("WAL_004", fmt.Sprintf("%q is not a wallet id", id), http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("WAL_005", "Wallet document too large", http.StatusRequestEntityTooLarge)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrRequestCanceled(err error) *AppError {
	return Wrap("SYS_002", "Request canceled before commit", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
