package domain

import (
	"errors"
	"fmt"
)

// Error classes. Concrete errors below match exactly one of them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	// ErrVersionConflict is returned when a repair order was modified between read and write
	ErrVersionConflict = fmt.Errorf("%w: repair order was modified concurrently", ErrConflict)

	// ErrOrderClosed is returned when editing a completed or canceled repair order
	ErrOrderClosed = fmt.Errorf("%w: repair order is closed", ErrConflict)
)

// ValidationError describes a single rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown identity. Resource names the kind of record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Resources reported by NotFoundError
const (
	ResourceProduct           = "product"
	ResourceSecondHandProduct = "second-hand product"
	ResourceRepairOrder       = "repair order"
	ResourceRepairItem        = "repair item"
	ResourceSale              = "sale"
)

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError is returned when a sale line asks for more units than are in stock
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrConflict
}

// TransitionError is returned for a repair status change the state machine does not allow
type TransitionError struct {
	From RepairStatus
	To   RepairStatus
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("repair order is %s and cannot move to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot change repair status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrConflict
}

// IsExpected reports whether err is a domain outcome rather than an infrastructure failure
func IsExpected(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
