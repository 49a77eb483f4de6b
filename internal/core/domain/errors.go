// Package domain defines the core domain models for tokfactory.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow the format TF-{CLASS}-{NNNN}.
type DomainError struct {
	Code    string // Error code (e.g., "TF-LEDG-4002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Ledger Errors (LEDG)
// ============================================================================

var (
	// ErrInvalidAmount indicates a zero credit, debit or transfer amount.
	ErrInvalidAmount = NewDomainError("TF-LEDG-4001", "invalid amount")

	// ErrInsufficientBalance indicates a debit larger than the current holding.
	ErrInsufficientBalance = NewDomainError("TF-LEDG-4002", "insufficient balance")

	// ErrSupplyViolation indicates the sum of balances no longer equals supply.
	ErrSupplyViolation = NewDomainError("TF-LEDG-5000", "supply conservation violated")
)

// ============================================================================
// Token Errors (TOKN)
// ============================================================================

var (
	// ErrTokenExpired indicates a mutating call at or after the token's expiry.
	// Callers match on the message text, keep it stable.
	ErrTokenExpired = NewDomainError("TF-TOKN-4100", "Token has expired")

	// ErrUnknownToken indicates no token is registered under the given address.
	ErrUnknownToken = NewDomainError("TF-TOKN-4040", "unknown token address")
)

// ============================================================================
// Batch Errors (BTCH)
// ============================================================================

var (
	// ErrBatchMismatch indicates a transfer addressed to a different batch.
	ErrBatchMismatch = NewDomainError("TF-BTCH-4000", "batch id mismatch")

	// ErrUnknownBatchID indicates no token is registered under the batch id.
	ErrUnknownBatchID = NewDomainError("TF-BTCH-4040", "unknown batch id")

	// ErrDuplicateBatchID indicates the batch id is already registered.
	ErrDuplicateBatchID = NewDomainError("TF-BTCH-4090", "duplicate batch id")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidAddress indicates an empty owner address.
	ErrInvalidAddress = NewDomainError("TF-ARG-1001", "invalid address")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TF-ARG-1002", "invalid argument")

	// ErrInvalidExpiry indicates an expiry that is not in the future at creation.
	ErrInvalidExpiry = NewDomainError("TF-ARG-1003", "expiry must be in the future")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal error.
	ErrInternal = NewDomainError("TF-SYS-5000", "internal error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("TF-SYS-5001", "storage error")
)
