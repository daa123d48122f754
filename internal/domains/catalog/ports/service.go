package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
)

var ErrNotFound = errors.New("product not found")

// ProductRecord is a product plus its persistence timestamps.
type ProductRecord = entity.Record[*domain.Product]

// CreateProductInput carries a new product as received from a client. Optional fields
// default to an empty description and zero stock.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       *decimal.Decimal
	Category    string
	Stock       *int
}

// Service defines the catalog use cases exposed to adapters (inbound/driving port).
type Service interface {
	ListProducts(ctx context.Context) ([]*ProductRecord, error)
	ListByCategory(ctx context.Context, category string) ([]*ProductRecord, error)
	GetProduct(ctx context.Context, id string) (*ProductRecord, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductRecord, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*ProductRecord, error)
	DeleteProduct(ctx context.Context, id string) error
}
