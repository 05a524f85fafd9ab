package order

import (
	"errors"
	"fmt"
)

// ValidationError means the caller sent malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type InsufficientCreditError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientCreditError) Error() string {
	return "insufficient credit balance"
}

// InsufficientStockError names the first product that cannot cover the order.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %q", e.ProductName)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError is a lost race with another writer. The operation can be
// retried from the start.
type ConflictError struct {
	Msg string
	Err error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConflictError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsRejected reports whether err is a business rule the caller can act on,
// as opposed to an infrastructure failure.
func IsRejected(err error) bool {
	var credit *InsufficientCreditError
	var stock *InsufficientStockError
	return IsValidation(err) || errors.As(err, &credit) || errors.As(err, &stock)
}

// failureReason labels err for the failure counter.
func failureReason(err error) string {
	var credit *InsufficientCreditError
	var stock *InsufficientStockError
	switch {
	case IsValidation(err):
		return "validation"
	case errors.As(err, &credit):
		return "credit"
	case errors.As(err, &stock):
		return "stock"
	case IsNotFound(err):
		return "not_found"
	case IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
