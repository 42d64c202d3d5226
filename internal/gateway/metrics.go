package gateway

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mozilla-ai/fingate/internal/domain"
)

const meterName = "github.com/mozilla-ai/fingate/internal/gateway"

type metrics struct {
	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)

	invocations, err := meter.Int64Counter(
		"fingate.gateway.invocations",
		metric.WithDescription("Tool invocations handled by the gateway"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invocations counter: %w", err)
	}

	latency, err := meter.Float64Histogram(
		"fingate.gateway.latency",
		metric.WithDescription("Latency of tool invocations handled by the gateway"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	return &metrics{invocations: invocations, latency: latency}, nil
}

func (m *metrics) record(ctx context.Context, result domain.ToolResult, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("server", result.ServerID),
		attribute.String("tool", result.Tool),
		attribute.String("outcome", string(result.Kind)),
	}
	switch {
	case result.IsFailure():
		attrs = append(attrs, attribute.String("reason", string(result.FailureKind)))
	case result.IsFallback():
		attrs = append(attrs, attribute.String("reason", string(result.Reason)))
	}

	// Metrics outlive the caller's cancellation.
	ctx = context.WithoutCancel(ctx)

	m.invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(attrs...))
}
