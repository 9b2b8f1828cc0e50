// Package order implements the checkout flow: customer validation, one-shot
// order submission with duplicate protection, and the persisted order record.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/quickparts/storefront/internal/domain/cart"
)

// Status is the lifecycle state of a persisted order. New orders start as
// StatusPending; only the admin surface moves them further.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CustomerInfo is the contact block collected at checkout. Name and phone
// are required; email and company are optional.
type CustomerInfo struct {
	Name    string
	Phone   string
	Email   string
	Company string
}

// Validate checks the required fields. Whitespace-only values count as empty.
func (c CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name"}
	}
	if strings.TrimSpace(c.Phone) == "" {
		return &ValidationError{Field: "phone"}
	}
	return nil
}

// Order is the persisted record produced from a submitted cart. Items are
// the cart lines frozen at submission time.
type Order struct {
	ID             string
	Customer       CustomerInfo
	Items          []cart.Item
	TotalAmount    decimal.Decimal
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
}

// Groups returns the order's items grouped by machine, exactly as the cart
// page and checkout summary grouped them.
func (o *Order) Groups() []cart.Group {
	return cart.GroupByMachine(o.Items)
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// Sentinel errors for the checkout flow.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart blocks checkout on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionInFlight rejects a second submit while one is running
	// for the same cart.
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrDuplicateIdempotencyKey is returned by Repository.Create when an
	// order with the same idempotency key already exists.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
)

// ValidationError reports a missing required customer field. It blocks the
// submission before any collaborator is called.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// SubmissionError wraps a failure from the order persistence collaborator.
// The cart is left intact so the user can retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
