package application

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
	"github.com/Apurer/go-gin-storefront/internal/shared/events"
)

// Collection is the document collection holding products.
const Collection = "products"

// Products is the generic entity service instantiated for the catalog.
type Products = entity.Service[domain.Product, *domain.Product]

// NewProducts binds the product entity service to sw.
func NewProducts(sw *docstore.Switch, opts ...entity.Option) *Products {
	return entity.NewService[domain.Product, *domain.Product](sw, Collection, opts...)
}

// Service orchestrates the catalog use cases.
type Service struct {
	products  *Products
	publisher events.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

// WithPublisher sends product change events to p.
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

// NewService wires the catalog service with its dependencies.
func NewService(products *Products, opts ...Option) *Service {
	s := &Service{
		products:  products,
		publisher: events.Noop,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns the whole catalog.
func (s *Service) ListProducts(ctx context.Context) ([]*ports.ProductRecord, error) {
	result, err := s.products.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListByCategory returns the products whose category equals the trimmed category exactly.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]*ports.ProductRecord, error) {
	result, err := s.products.Find(ctx, docstore.Filter{"category": strings.TrimSpace(category)})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*ports.ProductRecord, error) {
	result, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// CreateProduct validates and stores a new product.
func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*ports.ProductRecord, error) {
	if input.Price == nil {
		return nil, mapError(domain.ErrPriceRequired)
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	product, err := domain.NewProduct(strings.TrimSpace(input.Name), description, *input.Price, strings.TrimSpace(input.Category), stock)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.EventProductCreated, saved.Entity.ID, saved.Entity)
	return saved, nil
}

// UpdateProduct applies the present fields of patch to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*ports.ProductRecord, error) {
	saved, err := s.products.Update(ctx, id, func(p *domain.Product) error {
		p.Apply(patch)
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.EventProductUpdated, id, saved.Entity)
	return saved, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	s.publish(ctx, domain.EventProductDeleted, id, nil)
	return nil
}

// publish never fails the use case; delivery problems are only logged.
func (s *Service) publish(ctx context.Context, eventType, id string, payload any) {
	event := events.New(eventType, domain.Aggregate, id, payload)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish product event",
			slog.String("event.type", eventType),
			slog.String("product.id", id),
			slog.String("error", err.Error()),
		)
	}
}

// Seeds returns the sample catalog as documents for the supervisor.
func Seeds() (docstore.Seed, error) {
	docs, err := entity.Documents[domain.Product, *domain.Product](time.Now(), domain.SampleProducts()...)
	if err != nil {
		return docstore.Seed{}, err
	}
	return docstore.Seed{Collection: Collection, Documents: docs}, nil
}

var _ ports.Service = (*Service)(nil)
