package storefrontserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	producthttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

// ProductAPI wires HTTP transport with the catalog service.
type ProductAPI struct {
	service   catalogports.Service
	responder *apierrors.ChainedResponder
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service, logger *slog.Logger) *ProductAPI {
	return &ProductAPI{service: service, responder: newResponder(logger)}
}

// Get /api/products
// Lists the catalog, optionally narrowed with ?category=
func (api *ProductAPI) ListProducts(c *gin.Context) {
	var (
		result []*catalogports.ProductRecord
		err    error
	)
	if category, ok := c.GetQuery("category"); ok && strings.TrimSpace(category) != "" {
		result, err = api.service.ListByCategory(c.Request.Context(), category)
	} else {
		result, err = api.service.ListProducts(c.Request.Context())
	}
	if err != nil {
		respondServiceError(c, api.responder, "product", "", err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromRecords(result))
}

// Get /api/products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	id := c.Param("id")
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, api.responder, "product", id, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromRecord(product))
}

// Post /api/products
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, api.responder, err)
		return
	}
	saved, err := api.service.CreateProduct(c.Request.Context(), producthttpmapper.ToCreateInput(payload))
	if err != nil {
		respondServiceError(c, api.responder, "product", "", err)
		return
	}
	c.JSON(http.StatusCreated, producthttpmapper.FromRecord(saved))
}

// Put /api/products/:id
// Applies only the fields present in the body
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, api.responder, err)
		return
	}
	updated, err := api.service.UpdateProduct(c.Request.Context(), id, producthttpmapper.ToPatch(payload))
	if err != nil {
		respondServiceError(c, api.responder, "product", id, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromRecord(updated))
}

// Delete /api/products/:id
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, api.responder, "product", id, err)
		return
	}
	c.Status(http.StatusNoContent)
}
