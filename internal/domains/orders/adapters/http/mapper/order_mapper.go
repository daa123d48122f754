package mapper

import (
	"time"

	orderdomain "github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// Item is the transport shape of an order line.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Address is the transport shape of a shipping address.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Order represents the transport-layer shape returned by the order handlers.
type Order struct {
	ID              string    `json:"id"`
	CustomerID      string    `json:"customerId"`
	Items           []Item    `json:"items"`
	ShippingAddress *Address  `json:"shippingAddress,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateOrderRequest is the body of POST /api/orders. A status field, if sent, is ignored.
type CreateOrderRequest struct {
	CustomerID      string   `json:"customerId"`
	Items           []Item   `json:"items"`
	ShippingAddress *Address `json:"shippingAddress"`
}

// UpdateOrderRequest is the body of PUT /api/orders/:id.
type UpdateOrderRequest struct {
	Status          *string  `json:"status"`
	ShippingAddress *Address `json:"shippingAddress"`
}

// StatusRequest is the body of PATCH /api/orders/:id/status.
type StatusRequest struct {
	Status string `json:"status"`
}

func ToCreateInput(req CreateOrderRequest) orderports.CreateOrderInput {
	items := make([]orderdomain.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return orderports.CreateOrderInput{
		CustomerID:      req.CustomerID,
		Items:           items,
		ShippingAddress: toDomainAddress(req.ShippingAddress),
	}
}

func ToPatch(req UpdateOrderRequest) orderdomain.OrderPatch {
	patch := orderdomain.OrderPatch{ShippingAddress: toDomainAddress(req.ShippingAddress)}
	if req.Status != nil {
		status := orderdomain.Status(*req.Status)
		patch.Status = &status
	}
	return patch
}

// FromRecord converts a stored order to the transport representation.
func FromRecord(record *orderports.OrderRecord) Order {
	if record == nil || record.Entity == nil {
		return Order{}
	}
	o := record.Entity
	items := make([]Item, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	var address *Address
	if o.ShippingAddress != nil {
		address = &Address{
			Street:     o.ShippingAddress.Street,
			City:       o.ShippingAddress.City,
			Country:    o.ShippingAddress.Country,
			PostalCode: o.ShippingAddress.PostalCode,
		}
	}
	return Order{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Items:           items,
		ShippingAddress: address,
		Status:          string(o.Status),
		CreatedAt:       record.Metadata.CreatedAt,
		UpdatedAt:       record.Metadata.UpdatedAt,
	}
}

func FromRecords(records []*orderports.OrderRecord) []Order {
	out := make([]Order, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

func toDomainAddress(a *Address) *orderdomain.Address {
	if a == nil {
		return nil
	}
	return &orderdomain.Address{
		Street:     a.Street,
		City:       a.City,
		Country:    a.Country,
		PostalCode: a.PostalCode,
	}
}
