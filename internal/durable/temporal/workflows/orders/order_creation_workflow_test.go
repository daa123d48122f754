package orders

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/durable/temporal/activities/orders"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

func newEnv(t *testing.T, ready func() bool) (*testsuite.TestWorkflowEnvironment, *ordersapp.Service) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	service := ordersapp.NewService(ordersapp.NewOrders(docstore.NewSwitch(nil)))
	activities := orderactivities.NewActivities(service, ready)
	env.RegisterActivityWithOptions(activities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})
	return env, service
}

func TestOrderCreationWorkflow_PersistsOrder(t *testing.T) {
	env, service := newEnv(t, nil)

	env.ExecuteWorkflow(OrderCreationWorkflow, OrderCreationWorkflowInput{
		Command: ports.CreateOrderInput{CustomerID: " c1 ", Items: []domain.Item{{ProductID: "1", Quantity: 3}}},
		TraceID: "trace-1",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var record ports.OrderRecord
	require.NoError(t, env.GetWorkflowResult(&record))
	require.Equal(t, "c1", record.Entity.CustomerID)
	require.Equal(t, domain.StatusPending, record.Entity.Status)
	require.False(t, record.Metadata.CreatedAt.IsZero())

	stored, err := service.GetOrder(t.Context(), record.Entity.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stored.Entity.Items[0].Quantity)
}

func TestOrderCreationWorkflow_RetriesUntilStoreReady(t *testing.T) {
	var attempts atomic.Int32
	env, _ := newEnv(t, func() bool { return attempts.Add(1) >= 3 })

	env.ExecuteWorkflow(OrderCreationWorkflow, OrderCreationWorkflowInput{
		Command: ports.CreateOrderInput{CustomerID: "c1", Items: []domain.Item{{ProductID: "1", Quantity: 1}}},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.EqualValues(t, 3, attempts.Load())
}

func TestOrderCreationWorkflow_InvalidInputIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	env, _ := newEnv(t, func() bool { attempts.Add(1); return true })

	env.ExecuteWorkflow(OrderCreationWorkflow, OrderCreationWorkflowInput{
		Command: ports.CreateOrderInput{CustomerID: "c1"},
	})
	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, orderactivities.InvalidInputErrorType, appErr.Type())
	require.EqualValues(t, 1, attempts.Load())
}
