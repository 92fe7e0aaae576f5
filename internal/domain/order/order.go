package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the backend-owned lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

// KnownStatuses lists the lifecycle states in their natural progression.
// The set is used for display grouping only; transitions are not validated
// against it because the backend owns that contract.
var KnownStatuses = []Status{StatusPending, StatusPreparing, StatusReady, StatusCompleted}

// Item is a line item in create-order request form: dish identifier plus a
// positive quantity. Unknown dish identifiers are passed through for the
// backend to validate.
type Item struct {
	DishID   int
	Quantity int
}

// Order is the backend's view of an order. Items carry only dish identifier
// and quantity; display names and prices are re-joined from a live menu
// snapshot at render time, never stored here.
type Order struct {
	ID             int
	Items          []Item
	Status         Status
	Total          decimal.Decimal
	PickupNotified bool
	UserID         int
	CreatedAt      string
	UpdatedAt      string
}

// PickupReady reports whether the order is waiting to be collected: the
// kitchen has completed it and the customer has not yet acknowledged pickup.
func (o *Order) PickupReady() bool {
	return o.Status == StatusCompleted && !o.PickupNotified
}

// ErrEmptyCart is returned when order creation finds no line item with a
// positive quantity. The caller should send the user back to the menu, not
// surface a backend error.
var ErrEmptyCart = errors.New("cart has no items")

// ValidationError indicates bad or missing local input. It is raised before
// any network call and never reaches the backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
