package domain

import (
	"errors"
	"fmt"
)

// Sentinel error values for the store's error taxonomy. Handlers map these
// to HTTP statuses via the response package.
var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
	ErrAlreadyRequested    = errors.New("already requested")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDisabled            = errors.New("disabled")
	ErrOutOfStock          = errors.New("out of stock")
	ErrInvalidState        = errors.New("invalid state transition")
)

// DomainError carries a sentinel category plus a human-readable message.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Unwrap exposes the sentinel for errors.Is checks.
func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Err: ErrNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewPermissionDeniedError reports an operation forbidden for the caller's role.
func NewPermissionDeniedError(message string) *DomainError {
	return &DomainError{Err: ErrPermissionDenied, Message: message}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Err: ErrUnauthorized, Message: message}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// NewConflictError reports a write that collides with existing state.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewAlreadyRequestedError reports a duplicate bonus payout request.
func NewAlreadyRequestedError(message string) *DomainError {
	return &DomainError{Err: ErrAlreadyRequested, Message: message}
}

// NewInsufficientBalanceError reports a balance below what the operation needs.
func NewInsufficientBalanceError(message string) *DomainError {
	return &DomainError{Err: ErrInsufficientBalance, Message: message}
}

// NewDisabledError reports an operation against a disabled program or prize.
func NewDisabledError(message string) *DomainError {
	return &DomainError{Err: ErrDisabled, Message: message}
}

// NewOutOfStockError reports a prize with exhausted quantity.
func NewOutOfStockError(message string) *DomainError {
	return &DomainError{Err: ErrOutOfStock, Message: message}
}

// NewInvalidStateError reports an illegal state machine transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Err: ErrInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}
