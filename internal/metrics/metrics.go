// Package metrics wires the OpenTelemetry meter provider and the
// authorization decision instruments.
package metrics

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdk "go.opentelemetry.io/otel/sdk/metric"
)

type Config struct {
	Enabled  bool          `conf:"enabled" yaml:"enabled" json:"enabled"`
	Exporter string        `conf:"exporter" yaml:"exporter" json:"exporter"`
	Endpoint string        `conf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Interval time.Duration `conf:"interval" yaml:"interval" json:"interval"`
}

// NewProvider builds the meter provider from config. Returns nil when metrics
// are disabled; callers must treat a nil provider as a no-op.
func NewProvider(cfg Config) (*sdk.MeterProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	var (
		exporter sdk.Exporter
		err      error
	)

	switch cfg.Exporter {
	case "otlp":
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}

		exporter, err = otlpmetrichttp.New(context.Background(), opts...)
	default:
		exporter, err = stdoutmetric.New()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	provider := sdk.NewMeterProvider(
		sdk.WithReader(sdk.NewPeriodicReader(exporter, sdk.WithInterval(interval))),
	)

	return provider, nil
}

var decisionCounter atomic.Pointer[metric.Int64Counter]

// SetupMetrics registers the provider globally and creates the decision
// instruments.
func SetupMetrics(provider *sdk.MeterProvider, name string) error {
	if provider == nil {
		return nil
	}

	otel.SetMeterProvider(provider)

	meter := provider.Meter(name)

	counter, err := meter.Int64Counter(
		"authz.decisions",
		metric.WithDescription("Authorization decisions by principal kind and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create decision counter: %w", err)
	}

	decisionCounter.Store(&counter)

	return nil
}

// RecordDecision counts one authorization decision. No-op until SetupMetrics
// has run.
func RecordDecision(ctx context.Context, principalKind, outcome string) {
	counter := decisionCounter.Load()
	if counter == nil {
		return
	}

	(*counter).Add(ctx, 1, metric.WithAttributes(
		attribute.String("principal", principalKind),
		attribute.String("outcome", outcome),
	))
}
