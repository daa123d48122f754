package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrEmptyCustomer    = errors.New("order customer id is required")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrInvalidProductID = errors.New("order item product id is required")
	ErrInvalidQuantity  = errors.New("order item quantity must be greater than zero")
	ErrInvalidStatus    = errors.New("order status is invalid")
	ErrStatusRequired   = errors.New("order status is required")
)

// Item is one line of an order.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Address is the optional shipping destination.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Order models the purchase order aggregate.
type Order struct {
	ID              string   `json:"id"`
	CustomerID      string   `json:"customerId"`
	Items           []Item   `json:"items"`
	ShippingAddress *Address `json:"shippingAddress,omitempty"`
	Status          Status   `json:"status"`
}

// NewOrder validates and constructs a new Order. New orders always start pending.
func NewOrder(customerID string, items []Item, address *Address) (*Order, error) {
	order := &Order{
		CustomerID:      customerID,
		Items:           append([]Item(nil), items...),
		ShippingAddress: cloneAddress(address),
		Status:          StatusPending,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

func (o *Order) EntityID() string      { return o.ID }
func (o *Order) SetEntityID(id string) { o.ID = id }

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.CustomerID) == "" {
		return ErrEmptyCustomer
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range o.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("item %d: %w", i, ErrInvalidProductID)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i, ErrInvalidQuantity)
		}
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// SetStatus overwrites the status. Only membership in the enum is checked; any known
// status may follow any other.
func (o *Order) SetStatus(s Status) error {
	if s == "" {
		return ErrStatusRequired
	}
	if !isValidStatus(s) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	o.Status = s
	return nil
}

// IsTerminal reports whether the order reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// OrderPatch carries the mutable fields of an update; nil fields are left untouched.
type OrderPatch struct {
	Status          *Status
	ShippingAddress *Address
}

// Apply copies the present fields onto the order.
func (o *Order) Apply(patch OrderPatch) error {
	if patch.Status != nil {
		if err := o.SetStatus(*patch.Status); err != nil {
			return err
		}
	}
	if patch.ShippingAddress != nil {
		o.ShippingAddress = cloneAddress(patch.ShippingAddress)
	}
	return nil
}

// Statuses lists the known statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// SampleOrders returns the fixed order loaded into an empty fallback store.
func SampleOrders() []*Order {
	return []*Order{
		{
			ID:         "1",
			CustomerID: "customer-001",
			Items:      []Item{{ProductID: "1", Quantity: 2}},
			ShippingAddress: &Address{
				Street:     "123 Main St",
				City:       "Springfield",
				Country:    "USA",
				PostalCode: "12345",
			},
			Status: StatusPending,
		},
	}
}
