package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	shipmentmemory "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/adapters/memory"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application"
	shipmenttypes "github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/application/types"
)

func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestService_RecordsSpansAndCounters(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := New(
		application.NewService(shipmentmemory.NewRepository()),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)
	ctx := context.Background()

	created, err := svc.CreateShipment(ctx, shipmenttypes.CreateShipmentInput{
		TrackingNumber: "TN-001",
		Origin:         "Lagos",
		Destination:    "Accra",
		EnterpriseID:   "ent-1",
		LogisticsID:    "log-1",
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, shipmenttypes.ChangeStatusInput{ID: created.Entity.ID, Status: "IN_TRANSIT"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, shipmenttypes.ChangeStatusInput{ID: created.Entity.ID, Status: "UNKNOWN"})
	require.ErrorIs(t, err, application.ErrInvalidStatus)

	totals := counterTotals(t, reader)
	assert.Equal(t, int64(1), totals["shipments.service.created"])
	assert.Equal(t, int64(1), totals["shipments.service.status_changed"])
	// no ledger configured, so the new shipment stays unanchored
	assert.Equal(t, int64(1), totals["shipments.service.anchor_failed"])

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "Service.CreateShipment", spans[0].Name())
	assert.Equal(t, "Service.ChangeStatus", spans[2].Name())
	assert.Equal(t, "Error", spans[2].Status().Code.String())
}
