package domain

// Event types published by the order service.
const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// Aggregate names the order aggregate in published events.
const Aggregate = "order"

// StatusChange is the payload of an order.status_changed event.
type StatusChange struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Previous   Status `json:"previous"`
	Current    Status `json:"current"`
	Terminal   bool   `json:"terminal"`
}
