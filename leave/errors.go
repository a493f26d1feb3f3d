/*
errors.go - Error taxonomy for the leave ledger

PURPOSE:
  All domain error types in one place. Callers branch on category with
  errors.Is against the sentinels; structured types carry the context
  needed for user-facing messages.

ERROR CATEGORIES:
  1. Validation errors   - Rejected input or business-rule violations
  2. State conflicts     - Transition attempted from a terminal status
  3. Balance shortfalls  - Requested days exceed the available balance
  4. Invariant errors    - A write would drive a balance negative;
                           these indicate a bug, never user error

USAGE:
    if errors.Is(err, leave.ErrInsufficientBalance) {
        // 422 to the client
    }

SEE ALSO:
  - api/handlers.go: Maps categories to HTTP status codes
*/
package leave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the category for rejected input and rule violations.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict is returned when a lifecycle transition is attempted
	// from a status that doesn't permit it.
	ErrStateConflict = errors.New("operation not permitted in current state")

	// ErrInsufficientBalance is returned when a deduction exceeds the
	// available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvariantViolation is returned when a write would leave a balance
	// in an impossible state. This is a server fault, not client error.
	ErrInvariantViolation = errors.New("balance invariant violated")

	// ErrLeaveTypeReferenced is returned when deleting a leave type that
	// balances or applications still point at.
	ErrLeaveTypeReferenced = errors.New("leave type is referenced by existing records")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError aggregates every failed check from one validation pass
// so the caller sees all problems at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validationf builds a single-message ValidationError.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Messages: []string{fmt.Sprintf(format, args...)}}
}

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Kind string // "employee", "leave type", "application", ...
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StateConflictError records which transition was refused and why.
type StateConflictError struct {
	ID        string
	Current   string
	Attempted string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s %s: status is %s", e.Attempted, e.ID, e.Current)
}

func (e *StateConflictError) Unwrap() error { return ErrStateConflict }

// InsufficientBalanceError carries the figures for the user-facing message.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance. Available: %s days, Requested: %s days",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// InvariantError reports a write that would drive a balance negative.
type InvariantError struct {
	EmployeeID  EmployeeID
	LeaveTypeID LeaveTypeID
	Year        int
	Current     decimal.Decimal
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("balance invariant violated: %s/%s/%d would become %s",
		e.EmployeeID, e.LeaveTypeID, e.Year, e.Current.StringFixed(2))
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsClientError reports whether the error is the caller's fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrStateConflict) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrLeaveTypeReferenced)
}
