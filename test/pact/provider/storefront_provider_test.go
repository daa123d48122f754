//go:build pact
// +build pact

package provider_test

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/Apurer/go-gin-storefront/test/pact"

	storefrontserver "github.com/Apurer/go-gin-storefront/go"
	catalogobs "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	ordersobs "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestProductServiceProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := newContractProviderApp(t)
	pactFile := requirePactFile(t, pacttest.ProductProviderName)

	stateHandlers := models.StateHandlers{
		pacttest.StateProductsBaseline: app.reset(nil),
		pacttest.StateProductExists:    app.reset(catalogapp.Seeds),
		pacttest.StateProductMissing:   app.reset(nil),
	}
	err := pactprovider.NewVerifier().VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProductProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
	})
	require.NoError(t, err)
}

func TestOrderServiceProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := newContractProviderApp(t)
	pactFile := requirePactFile(t, pacttest.OrderProviderName)

	stateHandlers := models.StateHandlers{
		pacttest.StateOrdersBaseline: app.reset(nil),
		pacttest.StateOrderExists:    app.reset(ordersapp.Seeds),
		pacttest.StateOrderMissing:   app.reset(nil),
	}
	err := pactprovider.NewVerifier().VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.OrderProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
	})
	require.NoError(t, err)
}

func requirePactFile(t *testing.T, provider string) string {
	t.Helper()
	pactFile := filepath.ToSlash(pacttest.PactFile(t, provider))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}
	return pactFile
}

// contractProviderApp serves both resources from the in-memory fallback store.
type contractProviderApp struct {
	sw     *docstore.Switch
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	sw := docstore.NewSwitch(nil)
	productService := catalogobs.New(catalogapp.NewService(catalogapp.NewProducts(sw)))
	orderService := ordersobs.New(ordersapp.NewService(ordersapp.NewOrders(sw)))

	router := gin.New()
	router.Use(gin.Recovery())
	router = storefrontserver.NewRouterWithGinEngine(router, storefrontserver.ApiHandleFunctions{
		ProductAPI: storefrontserver.NewProductAPI(productService, nil),
		OrderAPI:   storefrontserver.NewOrderAPI(orderService, nil, nil),
		HealthAPI:  storefrontserver.NewHealthAPI("storefront-contract"),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{sw: sw, server: server}
}

func (a *contractProviderApp) reset(seeds func() (docstore.Seed, error)) models.StateHandler {
	return func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
		a.sw.Fallback().Reset()
		if !setup || seeds == nil {
			return nil, nil
		}
		seed, err := seeds()
		if err != nil {
			return nil, err
		}
		a.sw.Fallback().Seed(seed.Collection, seed.Documents)
		return nil, nil
	}
}
