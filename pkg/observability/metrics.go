package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry defaults to a fresh registry.
	Registry *prometheus.Registry
}

// InitMetrics initializes the Prometheus-backed meter provider and installs it
// globally. Returns the provider and an HTTP handler for the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// PredictionMetrics records prediction counts and latency.
type PredictionMetrics struct {
	predictions metric.Int64Counter
	degraded    metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewPredictionMetrics registers the prediction instruments on the given meter.
func NewPredictionMetrics(meter metric.Meter) (*PredictionMetrics, error) {
	predictions, err := meter.Int64Counter("predictions_total",
		metric.WithDescription("Predictions served, by mode and risk category"))
	if err != nil {
		return nil, fmt.Errorf("failed to create predictions counter: %w", err)
	}
	degraded, err := meter.Int64Counter("predictions_degraded_total",
		metric.WithDescription("Single predictions answered with the degraded default"))
	if err != nil {
		return nil, fmt.Errorf("failed to create degraded counter: %w", err)
	}
	failures, err := meter.Int64Counter("prediction_failures_total",
		metric.WithDescription("Prediction requests that returned an error"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	duration, err := meter.Float64Histogram("prediction_duration_seconds",
		metric.WithDescription("Prediction latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &PredictionMetrics{
		predictions: predictions,
		degraded:    degraded,
		failures:    failures,
		duration:    duration,
	}, nil
}

// RecordPrediction counts one scored record.
func (m *PredictionMetrics) RecordPrediction(ctx context.Context, mode, category string) {
	if m == nil {
		return
	}
	m.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("risk_category", category),
	))
}

// RecordDegraded counts a degraded single prediction.
func (m *PredictionMetrics) RecordDegraded(ctx context.Context) {
	if m == nil {
		return
	}
	m.degraded.Add(ctx, 1)
}

// RecordFailure counts a failed request.
func (m *PredictionMetrics) RecordFailure(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// ObserveDuration records request latency in seconds.
func (m *PredictionMetrics) ObserveDuration(ctx context.Context, mode string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, seconds, metric.WithAttributes(attribute.String("mode", mode)))
}
