package storefrontserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	orderhttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/http/mapper"
	orderworkflows "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
	"github.com/Apurer/go-gin-storefront/internal/shared/entity"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

func newOrderRouter(sw *docstore.Switch) *gin.Engine {
	gin.SetMode(gin.TestMode)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Second)
	}
	service := ordersapp.NewService(ordersapp.NewOrders(sw, entity.WithClock(clock)))
	return NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		OrderAPI:  NewOrderAPI(service, nil, nil),
		HealthAPI: NewHealthAPI("order-service"),
	})
}

const validOrder = `{"customerId":"customer-42","items":[{"productId":"1","quantity":1}],"status":"delivered"}`

func TestCreateOrder_ForcesPending(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))

	w := doJSON(t, router, http.MethodPost, "/api/orders", validOrder)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[orderhttpmapper.Order](t, w)
	require.NotEmpty(t, order.ID)
	require.Equal(t, "pending", order.Status)
	require.Equal(t, "customer-42", order.CustomerID)
	require.Nil(t, order.ShippingAddress)
}

func TestCreateOrder_ItemValidation(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))

	for name, body := range map[string]string{
		"no items":        `{"customerId":"c1","items":[]}`,
		"missing items":   `{"customerId":"c1"}`,
		"zero quantity":   `{"customerId":"c1","items":[{"productId":"1","quantity":0}]}`,
		"missing product": `{"customerId":"c1","items":[{"quantity":2}]}`,
		"no customer":     `{"items":[{"productId":"1","quantity":1}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/orders", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Equal(t, apierrors.TypeValidation, decode[apierrors.ProblemDetail](t, w).Type)
		})
	}

	w := doJSON(t, router, http.MethodPost, "/api/orders", `{"customerId":"c1","items":[{"productId":"1","quantity":1}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestPatchOrderStatus(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))
	created := decode[orderhttpmapper.Order](t, doJSON(t, router, http.MethodPost, "/api/orders", validOrder))

	w := doJSON(t, router, http.MethodPatch, "/api/orders/does-not-exist/status", `{"status":"shipped"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/orders/"+created.ID+"/status", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[orderhttpmapper.Order](t, w)
	require.Equal(t, "shipped", patched.Status)
	require.True(t, patched.UpdatedAt.After(created.UpdatedAt))
	require.Equal(t, created.CreatedAt, patched.CreatedAt)

	w = doJSON(t, router, http.MethodPatch, "/api/orders/"+created.ID+"/status", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/orders/does-not-exist/status", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/orders/"+created.ID+"/status", `{"status":"teleported"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrder(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))
	created := decode[orderhttpmapper.Order](t, doJSON(t, router, http.MethodPost, "/api/orders", validOrder))

	w := doJSON(t, router, http.MethodPut, "/api/orders/"+created.ID,
		`{"shippingAddress":{"street":"1 Infinite Loop","city":"Cupertino","country":"US","postalCode":"95014"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[orderhttpmapper.Order](t, w)
	require.Equal(t, "pending", updated.Status)
	require.Equal(t, "Cupertino", updated.ShippingAddress.City)

	w = doJSON(t, router, http.MethodPut, "/api/orders/"+created.ID, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated = decode[orderhttpmapper.Order](t, w)
	require.Equal(t, "delivered", updated.Status)
	require.Equal(t, "Cupertino", updated.ShippingAddress.City)

	w = doJSON(t, router, http.MethodPut, "/api/orders/"+created.ID, `{"status":"lost"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/orders/unknown", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersByCustomer(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/orders", validOrder).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/orders",
		`{"customerId":"customer-7","items":[{"productId":"2","quantity":3}]}`).Code)

	w := doJSON(t, router, http.MethodGet, "/api/orders/customer/customer-42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]orderhttpmapper.Order](t, w)
	require.Len(t, orders, 1)
	require.Equal(t, "customer-42", orders[0].CustomerID)

	w = doJSON(t, router, http.MethodGet, "/api/orders/customer/nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	all := decode[[]orderhttpmapper.Order](t, doJSON(t, router, http.MethodGet, "/api/orders", nil))
	require.Len(t, all, 2)
}

func TestDeleteOrder(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))
	created := decode[orderhttpmapper.Order](t, doJSON(t, router, http.MethodPost, "/api/orders", validOrder))

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/api/orders/"+created.ID, nil).Code)
	require.Equal(t, http.StatusNoContent, doJSON(t, router, http.MethodDelete, "/api/orders/"+created.ID, nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodDelete, "/api/orders/"+created.ID, nil).Code)
	require.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/orders/"+created.ID, nil).Code)
}

func TestOrderRouter_ServesOnlyOrderRoutes(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))

	require.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/api/products", nil).Code)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "order-service", decode[map[string]string](t, w)["service"])
}

// recordingWorkflows runs creation inline and remembers what the handler passed.
type recordingWorkflows struct {
	inline *orderworkflows.InlineOrderWorkflows
	inputs []orderports.CreateOrderInput
}

func (r *recordingWorkflows) CreateOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderports.OrderRecord, error) {
	r.inputs = append(r.inputs, input)
	return r.inline.CreateOrder(ctx, input)
}

func TestCreateOrder_GoesThroughWorkflows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := ordersapp.NewService(ordersapp.NewOrders(docstore.NewSwitch(nil)))
	workflows := &recordingWorkflows{inline: orderworkflows.NewInlineOrderWorkflows(service)}
	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{OrderAPI: NewOrderAPI(service, workflows, nil)})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrder))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, "checkout-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, workflows.inputs, 1)
	require.Equal(t, "checkout-123", workflows.inputs[0].IdempotencyKey)
	require.Equal(t, "customer-42", workflows.inputs[0].CustomerID)

	w = doJSON(t, router, http.MethodPost, "/api/orders", `{"customerId":"c1","items":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, workflows.inputs, 2)
}

func TestCreateOrder_DuplicateIdentifierConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	orders := ordersapp.NewOrders(docstore.NewSwitch(nil), entity.WithIDGenerator(func() string { return "fixed" }))
	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		OrderAPI: NewOrderAPI(ordersapp.NewService(orders), nil, nil),
	})

	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/orders", validOrder).Code)
	w := doJSON(t, router, http.MethodPost, "/api/orders", validOrder)
	require.Equal(t, http.StatusConflict, w.Code)
	problem := decode[apierrors.ProblemDetail](t, w)
	require.Equal(t, apierrors.TypeConflict, problem.Type)
	require.Equal(t, "/api/orders", problem.Instance)
}

func TestListOrdersByCustomer_TrimsLikeCreate(t *testing.T) {
	router := newOrderRouter(docstore.NewSwitch(nil))
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/orders",
		`{"customerId":"c1 ","items":[{"productId":"1","quantity":1}]}`).Code)

	for _, path := range []string{"/api/orders/customer/c1%20", "/api/orders/customer/c1"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		orders := decode[[]orderhttpmapper.Order](t, w)
		require.Len(t, orders, 1, path)
		require.Equal(t, "c1", orders[0].CustomerID)
	}

	w := doJSON(t, router, http.MethodGet, "/api/orders/customer/%20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}
