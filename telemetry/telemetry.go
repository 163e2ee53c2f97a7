// Package telemetry wires the OpenTelemetry meter provider and the
// storefront's business counters.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
)

const meterName = "github.com/Ashish5180/vibe-bites"

type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string // host:port of an OTLP/gRPC collector; empty disables export
	Insecure     bool
	Interval     time.Duration
}

// Provider owns the meter provider and the counters built on it.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	Metrics       *Metrics
}

// New builds the meter provider. Without an endpoint the counters are still
// recorded in process but never exported.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Provider, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		interval := cfg.Interval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	m, err := NewMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	log.Info("telemetry initialized", zap.String("endpoint", cfg.OTLPEndpoint), zap.Bool("export", cfg.OTLPEndpoint != ""))
	return &Provider{meterProvider: mp, Metrics: m}, nil
}

// Shutdown flushes pending exports.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.meterProvider.Shutdown(ctx)
}

// Metrics are the business counters. A nil *Metrics records nothing.
type Metrics struct {
	ordersPlaced    metric.Int64Counter
	orderRevenue    metric.Float64Counter
	couponsRedeemed metric.Int64Counter
	couponsExpired  metric.Int64Counter
	paymentEvents   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.ordersPlaced, err = meter.Int64Counter("vibebites.orders.placed",
		metric.WithDescription("Orders committed")); err != nil {
		return nil, err
	}
	if m.orderRevenue, err = meter.Float64Counter("vibebites.orders.revenue",
		metric.WithDescription("Order totals committed"), metric.WithUnit("INR")); err != nil {
		return nil, err
	}
	if m.couponsRedeemed, err = meter.Int64Counter("vibebites.coupons.redeemed",
		metric.WithDescription("Coupons applied to committed orders")); err != nil {
		return nil, err
	}
	if m.couponsExpired, err = meter.Int64Counter("vibebites.coupons.expired",
		metric.WithDescription("Coupons deactivated by the expiry sweep")); err != nil {
		return nil, err
	}
	if m.paymentEvents, err = meter.Int64Counter("vibebites.payments.events",
		metric.WithDescription("Payment webhook events handled")); err != nil {
		return nil, err
	}
	return &m, nil
}

// Noop returns counters backed by the no-op meter.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func (m *Metrics) OrderPlaced(ctx context.Context, total decimal.Decimal, paymentMethod, couponCode string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("payment_method", paymentMethod))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderRevenue.Add(ctx, total.InexactFloat64(), attrs)
	if couponCode != "" {
		m.couponsRedeemed.Add(ctx, 1, metric.WithAttributes(attribute.String("code", couponCode)))
	}
}

func (m *Metrics) CouponsExpired(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.couponsExpired.Add(ctx, n)
}

func (m *Metrics) PaymentEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.paymentEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}
