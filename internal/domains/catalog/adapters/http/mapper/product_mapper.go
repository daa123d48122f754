package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
)

// Product represents the transport-layer shape returned by the product handlers.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductRequest is the body of POST and PUT /api/products. Every field is optional at
// the transport level; the domain decides what is required.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
}

// ToCreateInput converts a transport request into the create use case input.
func ToCreateInput(req ProductRequest) catalogports.CreateProductInput {
	input := catalogports.CreateProductInput{
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Category != nil {
		input.Category = *req.Category
	}
	return input
}

// ToPatch converts a transport request into a partial update.
func ToPatch(req ProductRequest) domain.ProductPatch {
	return domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}
}

// FromRecord converts a stored product to the transport representation.
func FromRecord(record *catalogports.ProductRecord) Product {
	if record == nil || record.Entity == nil {
		return Product{}
	}
	p := record.Entity
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   record.Metadata.CreatedAt,
		UpdatedAt:   record.Metadata.UpdatedAt,
	}
}

func FromRecords(records []*catalogports.ProductRecord) []Product {
	out := make([]Product, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}
