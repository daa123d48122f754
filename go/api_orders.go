package storefrontserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	orderworkflows "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/workflows"
	orderhttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry order creation without placing a second order
// when creation runs as a durable workflow.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the order service.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
	responder *apierrors.ChainedResponder
}

// NewOrderAPI serves orders from service. Creation goes through workflows; nil runs it inline.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator, logger *slog.Logger) *OrderAPI {
	if workflows == nil {
		workflows = orderworkflows.NewInlineOrderWorkflows(service)
	}
	return &OrderAPI{service: service, workflows: workflows, responder: newResponder(logger)}
}

// Get /api/orders
func (api *OrderAPI) ListOrders(c *gin.Context) {
	result, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, api.responder, "order", "", err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRecords(result))
}

// Get /api/orders/customer/:customerId
// An unknown customer yields an empty list
func (api *OrderAPI) ListOrdersByCustomer(c *gin.Context) {
	result, err := api.service.ListByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondServiceError(c, api.responder, "order", "", err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRecords(result))
}

// Get /api/orders/:id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, api.responder, "order", id, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRecord(order))
}

// Post /api/orders
// The stored order always starts pending
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, api.responder, err)
		return
	}
	input := orderhttpmapper.ToCreateInput(payload)
	input.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)
	saved, err := api.workflows.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, api.responder, "order", "", err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromRecord(saved))
}

// Put /api/orders/:id
// Updates status and/or shipping address
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	id := c.Param("id")
	var payload orderhttpmapper.UpdateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, api.responder, err)
		return
	}
	updated, err := api.service.UpdateOrder(c.Request.Context(), id, orderhttpmapper.ToPatch(payload))
	if err != nil {
		respondServiceError(c, api.responder, "order", id, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRecord(updated))
}

// Patch /api/orders/:id/status
func (api *OrderAPI) PatchOrderStatus(c *gin.Context) {
	id := c.Param("id")
	var payload orderhttpmapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, api.responder, err)
		return
	}
	updated, err := api.service.PatchStatus(c.Request.Context(), id, orderdomain.Status(payload.Status))
	if err != nil {
		respondServiceError(c, api.responder, "order", id, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromRecord(updated))
}

// Delete /api/orders/:id
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, api.responder, "order", id, err)
		return
	}
	c.Status(http.StatusNoContent)
}
