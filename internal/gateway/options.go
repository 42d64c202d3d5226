package gateway

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Options contains optional configuration for the Gateway.
// NewOptions should be used to create instances of Options.
type Options struct {
	// MeterProvider supplies the meter used for invocation metrics.
	MeterProvider metric.MeterProvider

	// Clock returns the current time, used to stamp diagnostics reports.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		MeterProvider: otel.GetMeterProvider(),
		Clock:         time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) error {
		if mp == nil {
			return fmt.Errorf("meter provider cannot be nil")
		}
		o.MeterProvider = mp
		return nil
	}
}

// WithClock overrides the time source used for diagnostics reports.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = clock
		return nil
	}
}
