// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain error taxonomy. Handlers map these onto HTTP status codes;
// anything that is none of them is reported as an opaque internal error.

var (
	// ErrEmptyCart blocks checkout on a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty, cannot place an order")
)

// NotFoundError names a missing resource and its id.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a state conflict: a duplicate attribute name, or
// an attribute that is still referenced by product values.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError exposes the product name and the quantity that
// is actually available.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: %d available", e.ProductName, e.Available)
}

// CartItemNotFoundError reports a product that has no line in the cart.
type CartItemNotFoundError struct {
	ProductID uuid.UUID
}

func (e *CartItemNotFoundError) Error() string {
	return fmt.Sprintf("product %s is not in the cart", e.ProductID)
}

// BadRequestError covers type-validation failures on attribute values and
// malformed input that is not silently droppable.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

func NewBadRequestError(format string, args ...interface{}) *BadRequestError {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}
