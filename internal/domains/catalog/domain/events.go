package domain

// Event types published by the catalog service.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// Aggregate names the catalog aggregate in published events.
const Aggregate = "product"
