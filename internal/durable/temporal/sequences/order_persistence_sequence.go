package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/durable/temporal/activities/orders"
)

// RunOrderPersistenceSequence executes the activities needed to persist a new order.
func RunOrderPersistenceSequence(ctx workflow.Context, input ports.CreateOrderInput) (*ports.OrderRecord, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order persistence sequence started", "customerId", input.CustomerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{orderactivities.InvalidInputErrorType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var record ports.OrderRecord
	err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, input).Get(ctx, &record)
	if err != nil {
		logger.Error("order persistence sequence failed", "customerId", input.CustomerID, "error", err)
		return nil, err
	}
	logger.Info("order persistence sequence completed", "orderId", record.Entity.ID)
	return &record, nil
}
