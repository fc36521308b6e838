package domain

import "errors"

// Ledger error taxonomy. Callers test with errors.Is; details are wrapped.
var (
	ErrSignature          = errors.New("signature error")
	ErrSequence           = errors.New("sequence error")
	ErrBalance            = errors.New("balance error")
	ErrIdentityMismatch   = errors.New("identity mismatch")
	ErrAlreadyInitialized = errors.New("wallet already initialized")
	ErrNotInitialized     = errors.New("wallet not initialized")
	ErrKey                = errors.New("key error")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrMalformed          = errors.New("malformed wallet")
)
