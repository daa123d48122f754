package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers a process serves. A nil API contributes no
// routes, so each service binary registers only its own resource.
type ApiHandleFunctions struct {
	ProductAPI *ProductAPI
	OrderAPI   *OrderAPI
	HealthAPI  HealthAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	routes := []Route{
		{"Health", http.MethodGet, "/health", handleFunctions.HealthAPI.Health},
	}
	if api := handleFunctions.ProductAPI; api != nil {
		routes = append(routes,
			Route{"ListProducts", http.MethodGet, "/api/products", api.ListProducts},
			Route{"GetProduct", http.MethodGet, "/api/products/:id", api.GetProduct},
			Route{"CreateProduct", http.MethodPost, "/api/products", api.CreateProduct},
			Route{"UpdateProduct", http.MethodPut, "/api/products/:id", api.UpdateProduct},
			Route{"DeleteProduct", http.MethodDelete, "/api/products/:id", api.DeleteProduct},
		)
	}
	if api := handleFunctions.OrderAPI; api != nil {
		routes = append(routes,
			Route{"ListOrders", http.MethodGet, "/api/orders", api.ListOrders},
			Route{"ListOrdersByCustomer", http.MethodGet, "/api/orders/customer/:customerId", api.ListOrdersByCustomer},
			Route{"GetOrder", http.MethodGet, "/api/orders/:id", api.GetOrder},
			Route{"CreateOrder", http.MethodPost, "/api/orders", api.CreateOrder},
			Route{"UpdateOrder", http.MethodPut, "/api/orders/:id", api.UpdateOrder},
			Route{"PatchOrderStatus", http.MethodPatch, "/api/orders/:id/status", api.PatchOrderStatus},
			Route{"DeleteOrder", http.MethodDelete, "/api/orders/:id", api.DeleteOrder},
		)
	}
	return routes
}
