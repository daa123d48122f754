package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
)

var ErrNotFound = errors.New("order not found")

// OrderRecord is an order plus its persistence timestamps.
type OrderRecord = entity.Record[*domain.Order]

// CreateOrderInput carries a new order as received from a client. Any status supplied by
// the client is ignored. IdempotencyKey only matters to durable orchestration, where it
// makes retried requests resolve to the same workflow.
type CreateOrderInput struct {
	CustomerID      string
	Items           []domain.Item
	ShippingAddress *domain.Address
	IdempotencyKey  string
}

// Service exposes order use cases to adapters.
type Service interface {
	ListOrders(ctx context.Context) ([]*OrderRecord, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*OrderRecord, error)
	GetOrder(ctx context.Context, id string) (*OrderRecord, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderRecord, error)
	UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (*OrderRecord, error)
	PatchStatus(ctx context.Context, id string, status domain.Status) (*OrderRecord, error)
	DeleteOrder(ctx context.Context, id string) error
}
