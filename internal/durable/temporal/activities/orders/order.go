package orders

import (
	"context"
	"errors"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName stores a new pending order.
	PersistOrderActivityName = "orders.activities.PersistOrder"
	// InvalidInputErrorType tags application errors that no retry can fix.
	InvalidInputErrorType = "orders.InvalidInput"
)

// ErrStoreNotReady is returned while the worker has no remote document store; the
// activity is retried instead of writing to process-local memory.
var ErrStoreNotReady = errors.New("order store not connected")

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
	ready   func() bool
}

// NewActivities wires the order service into the Temporal activities bundle. ready reports
// whether writes would reach the shared store; nil means always.
func NewActivities(service ports.Service, ready func() bool) *Activities {
	return &Activities{service: service, ready: ready}
}

// PersistOrder stores a new order and returns it with its timestamps.
func (a *Activities) PersistOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.OrderRecord, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized", "customerId", input.CustomerID)
		return nil, errors.New("order persist activity not initialized")
	}
	if a.ready != nil && !a.ready() {
		logger.Warn("PersistOrder waiting for document store", "customerId", input.CustomerID)
		return nil, ErrStoreNotReady
	}
	logger.Info("PersistOrder activity started", "customerId", input.CustomerID)
	saved, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		logger.Error("PersistOrder activity failed", "customerId", input.CustomerID, "error", err)
		if errors.Is(err, ordersapp.ErrInvalidInput) {
			detail := strings.TrimPrefix(err.Error(), ordersapp.ErrInvalidInput.Error()+": ")
			return nil, temporal.NewNonRetryableApplicationError(detail, InvalidInputErrorType, nil)
		}
		return nil, err
	}
	logger.Info("PersistOrder activity completed", "orderId", saved.Entity.ID)
	return saved, nil
}
