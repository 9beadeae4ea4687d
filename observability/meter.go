package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/modelgate/logger"
)

// Metric names.
const (
	MetricDispatchRequests = "modelgate.dispatch.requests"
	MetricDispatchDuration = "modelgate.dispatch.duration"
	MetricDispatchInFlight = "modelgate.dispatch.in_flight"
)

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, cfg Config, serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(serviceName, serviceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the modelgate meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// DispatchMetrics holds the instruments recorded around each dispatch.
type DispatchMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewDispatchMetrics creates the dispatch instruments on meter.
func NewDispatchMetrics(meter metric.Meter) (*DispatchMetrics, error) {
	requests, err := meter.Int64Counter(MetricDispatchRequests,
		metric.WithDescription("Dispatched generation requests by model, capability and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDispatchRequests, err)
	}

	duration, err := meter.Float64Histogram(MetricDispatchDuration,
		metric.WithDescription("Duration of dispatched generation requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDispatchDuration, err)
	}

	inFlight, err := meter.Int64UpDownCounter(MetricDispatchInFlight,
		metric.WithDescription("Generation requests currently waiting on a backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDispatchInFlight, err)
	}

	return &DispatchMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// Start marks a request as in flight.
func (m *DispatchMetrics) Start(ctx context.Context, model string) {
	m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrModel, model)))
}

// Finish records a completed request. outcome is "success" or an error code.
func (m *DispatchMetrics) Finish(ctx context.Context, model, capability, outcome string, d time.Duration) {
	m.inFlight.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrModel, model)))
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.String(AttrCapability, capability),
		attribute.String(AttrOutcome, outcome),
	))
	m.duration.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(
		attribute.String(AttrModel, model),
		attribute.String(AttrCapability, capability),
	))
}
