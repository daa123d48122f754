//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ConsumerName        = "storefront-web"
	ProductProviderName = "product-service"
	OrderProviderName   = "order-service"

	StateProductsBaseline = "product catalog baseline"
	StateProductExists    = "product with id 1 exists"
	StateProductMissing   = "no product with id missing-product"
	StateOrdersBaseline   = "order book baseline"
	StateOrderExists      = "order with id 1 exists"
	StateOrderMissing     = "no order with id missing-order"
)

const (
	ExistingProductID = "1"
	MissingProductID  = "missing-product"

	ExistingOrderID = "1"
	MissingOrderID  = "missing-order"
	CustomerID      = "customer-001"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path between the web consumer and provider.
func PactFile(t testing.TB, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+provider+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the create request the web consumer sends.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"name":        "Mechanical Keyboard",
		"description": "Hot-swappable switches",
		"price":       129.5,
		"category":    "Accessories",
		"stock":       15,
	}
}

// ExampleOrderPayload is the create request the web consumer sends.
func ExampleOrderPayload() map[string]any {
	return map[string]any{
		"customerId": CustomerID,
		"items": []map[string]any{
			{"productId": ExistingProductID, "quantity": 2},
		},
		"shippingAddress": map[string]any{
			"street":     "123 Main St",
			"city":       "Springfield",
			"country":    "USA",
			"postalCode": "12345",
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
