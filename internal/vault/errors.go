package vault

import (
	"errors"
	"fmt"
)

// Validation failures: detected before any balance mutation.
var (
	ErrInvalidAmount     = errors.New("vault: amount must be greater than zero")
	ErrInvalidPercentage = errors.New("vault: percentage must be between 0 and 100")
	ErrInvalidInterval   = errors.New("vault: interval must be greater than zero")
	ErrZeroAddress       = errors.New("vault: address must not be zero")
)

// Authorization failures: caller or message origin is not permitted.
var (
	ErrNotAuthority          = errors.New("vault: caller is not the authority")
	ErrChainNotAllowed       = errors.New("vault: source chain not allowlisted")
	ErrSenderNotAllowed      = errors.New("vault: sender not allowlisted")
	ErrDestinationNotAllowed = errors.New("vault: destination chain not allowlisted")
)

// State and funds failures.
var (
	ErrPoolLocked          = errors.New("vault: pool is locked for migration")
	ErrNothingToMigrate    = errors.New("vault: no principal to migrate")
	ErrNothingToAccrue     = errors.New("vault: no time elapsed since last accrual")
	ErrInsufficientBalance = errors.New("vault: insufficient balance")
	ErrNoFeeBalance        = errors.New("vault: no fee token balance")
)

// TransportError reports a synchronous send rejection. The underlying reason
// is preserved for diagnostics.
type TransportError struct {
	Reason error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("vault: transport rejected send: %v", e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Reason }

// ApprovalError reports a failure in the allowance reset-then-set sequence.
type ApprovalError struct {
	Step string // "reset" or "set"
	Err  error
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("vault: allowance %s failed: %v", e.Step, e.Err)
}

func (e *ApprovalError) Unwrap() error { return e.Err }
