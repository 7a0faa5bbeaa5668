package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every failure returned by a ledger backend unwraps to one
// of these sentinels, so callers can branch with errors.Is.
var (
	ErrConstraintViolation  = errors.New("constraint violation")
	ErrNotFound             = errors.New("entity not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrTransientUnavailable = errors.New("transient failure, retry the operation")
)

// Constraint rules reported in ConstraintViolationError.Rule.
const (
	RuleRequired   = "required"
	RuleNonNeg     = "gte0"
	RulePositive   = "gt0"
	RuleUnique     = "unique"
	RuleFormat     = "format"
	RuleRestrict   = "restrict"
	RuleHasOrders  = "has_orders"
	RuleCheck      = "check"
	RuleForeignKey = "foreign_key"
	RuleCycle      = "cycle"
	RuleImmutable  = "immutable"
)

// ConstraintViolationError reports a check, uniqueness or restrict failure.
type ConstraintViolationError struct {
	Table string
	Field string
	Rule  string
	ID    int64
}

func (e *ConstraintViolationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("constraint violation on %s %d: %s", e.Table, e.ID, e.Rule)
	}
	return fmt.Sprintf("constraint violation on %s.%s: %s", e.Table, e.Field, e.Rule)
}

func (e *ConstraintViolationError) Unwrap() error {
	return ErrConstraintViolation
}

// NotFoundError reports a missing row, either the target of a get, update
// or delete, or the parent named by a foreign key.
type NotFoundError struct {
	Table string
	ID    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Table, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InsufficientStockError is returned by the inventory guard.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cannot place order: not enough stock for product %d (available %d, requested %d)",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// TransientError wraps a connection or transaction-layer failure.
// The unit of work was rolled back and may be retried.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *TransientError) Unwrap() []error {
	return []error{ErrTransientUnavailable, e.Err}
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation reports whether err is a ConstraintViolation failure.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsInsufficientStock reports whether err was raised by the inventory guard.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsRetryable reports whether the caller may retry the operation as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientUnavailable)
}
