package telemetry

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestOrderPlacedCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.OrderPlaced(ctx, decimal.RequireFromString("450"), "cod", "VIBE10")
	m.OrderPlaced(ctx, decimal.RequireFromString("100.50"), "cod", "")
	m.CouponsExpired(ctx, 3)

	got := collect(t, reader)

	orders := got["vibebites.orders.placed"].(metricdata.Sum[int64])
	require.Len(t, orders.DataPoints, 1)
	assert.Equal(t, int64(2), orders.DataPoints[0].Value)

	revenue := got["vibebites.orders.revenue"].(metricdata.Sum[float64])
	assert.InDelta(t, 550.5, revenue.DataPoints[0].Value, 0.001)

	redeemed := got["vibebites.coupons.redeemed"].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), redeemed.DataPoints[0].Value)

	expired := got["vibebites.coupons.expired"].(metricdata.Sum[int64])
	assert.Equal(t, int64(3), expired.DataPoints[0].Value)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderPlaced(context.Background(), decimal.NewFromInt(1), "card", "X")
		m.CouponsExpired(context.Background(), 1)
		m.PaymentEvent(context.Background(), "payment_intent.succeeded")
	})
	assert.NotPanics(t, func() { Noop().PaymentEvent(context.Background(), "x") })
}

func TestNewWithoutEndpoint(t *testing.T) {
	p, err := New(context.Background(), Config{ServiceName: "vibe-bites", Environment: "test"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, p.Metrics)
	assert.NoError(t, p.Shutdown(context.Background()))
}
