package application

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
	"github.com/Apurer/go-gin-storefront/internal/shared/events"
)

// Collection is the document collection holding orders.
const Collection = "orders"

// Orders is the generic entity service instantiated for orders.
type Orders = entity.Service[domain.Order, *domain.Order]

func NewOrders(sw *docstore.Switch, opts ...entity.Option) *Orders {
	return entity.NewService[domain.Order, *domain.Order](sw, Collection, opts...)
}

// Service orchestrates the order management use cases.
type Service struct {
	orders    *Orders
	publisher events.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the order service with its dependencies.
func NewService(orders *Orders, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		publisher: events.Noop,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListOrders(ctx context.Context) ([]*ports.OrderRecord, error) {
	result, err := s.orders.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListByCustomer returns the orders placed by customerID; no match is an empty result.
// The key is trimmed the same way CreateOrder trims the stored customer id.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*ports.OrderRecord, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return []*ports.OrderRecord{}, nil
	}
	result, err := s.orders.Find(ctx, docstore.Filter{"customerId": customerID})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*ports.OrderRecord, error) {
	result, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// CreateOrder stores a new pending order.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.OrderRecord, error) {
	order, err := domain.NewOrder(strings.TrimSpace(input.CustomerID), input.Items, input.ShippingAddress)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.EventOrderCreated, saved.Entity.ID, saved.Entity)
	return saved, nil
}

// UpdateOrder applies the status and shipping address present in patch.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (*ports.OrderRecord, error) {
	var previous domain.Status
	saved, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		previous = o.Status
		return o.Apply(patch)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.EventOrderUpdated, id, saved.Entity)
	if saved.Entity.Status != previous {
		s.publishStatusChange(ctx, saved.Entity, previous)
	}
	return saved, nil
}

// PatchStatus overwrites the status of an existing order. A missing status is rejected
// before the order is looked up.
func (s *Service) PatchStatus(ctx context.Context, id string, status domain.Status) (*ports.OrderRecord, error) {
	if strings.TrimSpace(string(status)) == "" {
		return nil, mapError(domain.ErrStatusRequired)
	}
	var previous domain.Status
	saved, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		previous = o.Status
		return o.SetStatus(status)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publishStatusChange(ctx, saved.Entity, previous)
	return saved, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.publish(ctx, domain.EventOrderDeleted, id, nil)
	return nil
}

func (s *Service) publishStatusChange(ctx context.Context, order *domain.Order, previous domain.Status) {
	s.publish(ctx, domain.EventOrderStatusChanged, order.ID, domain.StatusChange{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Previous:   previous,
		Current:    order.Status,
		Terminal:   order.IsTerminal(),
	})
}

func (s *Service) publish(ctx context.Context, eventType, id string, payload any) {
	event := events.New(eventType, domain.Aggregate, id, payload)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event.type", eventType),
			slog.String("order.id", id),
			slog.String("error", err.Error()),
		)
	}
}

// Seeds returns the sample order as documents for the supervisor.
func Seeds() (docstore.Seed, error) {
	docs, err := entity.Documents[domain.Order, *domain.Order](time.Now(), domain.SampleOrders()...)
	if err != nil {
		return docstore.Seed{}, err
	}
	return docstore.Seed{Collection: Collection, Documents: docs}, nil
}

var _ ports.Service = (*Service)(nil)
