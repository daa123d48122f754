package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the aggregate managed by the catalog bounded context. The JSON shape is the
// document body persisted by the document store.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
}

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrEmptyCategory = errors.New("product category is required")
	ErrPriceRequired = errors.New("product price is required")
	ErrNegativePrice = errors.New("product price must be greater or equal to zero")
	ErrNegativeStock = errors.New("product stock must be greater or equal to zero")
)

// NewProduct validates the invariants and builds a new Product aggregate.
func NewProduct(name, description string, price decimal.Decimal, category string, stock int) (*Product, error) {
	p := &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Stock:       stock,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) EntityID() string      { return p.ID }
func (p *Product) SetEntityID(id string) { p.ID = id }

// Validate enforces the catalog invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// ProductPatch carries the fields of a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Stock       *int
}

// Apply copies the present fields onto the product. Name and category are trimmed the
// way product creation trims them. Validation happens afterwards.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
}

// SampleProducts returns the fixed catalog loaded into empty stores.
func SampleProducts() []*Product {
	return []*Product{
		{
			ID:          "1",
			Name:        "Laptop",
			Description: "High-performance laptop",
			Price:       decimal.RequireFromString("999.99"),
			Category:    "Electronics",
			Stock:       10,
		},
		{
			ID:          "2",
			Name:        "Smartphone",
			Description: "Latest model smartphone",
			Price:       decimal.RequireFromString("699.99"),
			Category:    "Electronics",
			Stock:       25,
		},
		{
			ID:          "3",
			Name:        "Headphones",
			Description: "Noise-cancelling headphones",
			Price:       decimal.RequireFromString("149.99"),
			Category:    "Electronics",
			Stock:       50,
		},
	}
}
