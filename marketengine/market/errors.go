package market

import (
	"errors"
	"fmt"
)

// The engine distinguishes five failure classes. Every failed action leaves
// the state untouched, so callers may always correct their input and
// resubmit.

// AuthorizationError is returned when the acting account is not the one
// required to authorize the operation.
type AuthorizationError struct {
	Account string
	Reason  string
	// Message replaces the default formatting when set; some public error
	// texts name the authorization problem without the account prefix.
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != "" {
		return fmt.Sprintf("missing required authority of %s: %s", e.Account, e.Reason)
	}
	return fmt.Sprintf("missing required authority of %s", e.Account)
}

// NotFoundError is returned when no row exists for the requested id.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with this id exists: %v", e.Entity, e.ID)
}

// PreconditionError is returned when a row exists but is in the wrong
// lifecycle state for the requested operation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// ValidationError is returned for malformed input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InvariantViolation is returned when external state contradicts a
// registered binding, e.g. an oracle datapoint missing for a committed
// median or a precision mismatch at pair registration.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return e.Reason
}

func ErrAuth(account string) error {
	return &AuthorizationError{Account: account}
}

func ErrAuthf(account, format string, args ...any) error {
	return &AuthorizationError{Account: account, Reason: fmt.Sprintf(format, args...)}
}

func ErrAuthMessage(account, message string) error {
	return &AuthorizationError{Account: account, Message: message}
}

func ErrNotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func ErrPrecondition(format string, args ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

func ErrValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func ErrInvariant(format string, args ...any) error {
	return &InvariantViolation{Reason: fmt.Sprintf(format, args...)}
}

func IsAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsPrecondition(err error) bool {
	var e *PreconditionError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsInvariantViolation(err error) bool {
	var e *InvariantViolation
	return errors.As(err, &e)
}
