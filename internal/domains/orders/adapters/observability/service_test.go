package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

func sumCounter(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestService_TracesStatusChanges(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inner := application.NewService(application.NewOrders(docstore.NewSwitch(nil)))
	svc := New(inner, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, ports.CreateOrderInput{
		CustomerID: "customer-9",
		Items:      []domain.Item{{ProductID: "1", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.PatchStatus(ctx, created.Entity.ID, domain.StatusShipped)
	require.NoError(t, err)
	_, err = svc.PatchStatus(ctx, "missing", domain.StatusDelivered)
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.EqualValues(t, 1, sumCounter(t, reader, "orders.service.orders_created"))
	require.EqualValues(t, 1, sumCounter(t, reader, "orders.service.status_changes"))

	ended := spans.Ended()
	require.Len(t, ended, 3)
	require.Equal(t, "OrderService.CreateOrder", ended[0].Name())
	require.Equal(t, "OrderService.PatchStatus", ended[1].Name())
	require.Equal(t, codes.Unset, ended[1].Status().Code)
	require.Equal(t, codes.Error, ended[2].Status().Code)
}
