package observability

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/docstore"
)

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestService_RecordsSpansAndCounters(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	inner := application.NewService(application.NewProducts(docstore.NewSwitch(nil)))
	svc := New(inner, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))

	p := decimal.RequireFromString("5")
	created, err := svc.CreateProduct(context.Background(), ports.CreateProductInput{Name: "Pen", Price: &p, Category: "Office"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(context.Background(), created.Entity.ID))
	err = svc.DeleteProduct(context.Background(), created.Entity.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	require.EqualValues(t, 1, counterValue(t, reader, "catalog.service.products_created"))
	require.EqualValues(t, 1, counterValue(t, reader, "catalog.service.products_deleted"))

	ended := spans.Ended()
	require.Len(t, ended, 3)
	require.Equal(t, "CatalogService.CreateProduct", ended[0].Name())
	require.Equal(t, codes.Unset, ended[1].Status().Code)
	require.Equal(t, codes.Error, ended[2].Status().Code)
}
