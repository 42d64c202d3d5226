package daemon

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// HealthChecks enables the background health prober.
	HealthChecks bool

	// StartupProbeTimeout bounds the probe of every server made before the API starts serving.
	// Zero skips the startup probe.
	StartupProbeTimeout time.Duration
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

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

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithHealthChecks enables or disables the background health prober.
func WithHealthChecks(enabled bool) Option {
	return func(o *Options) error {
		o.HealthChecks = enabled
		return nil
	}
}

// WithStartupProbeTimeout configures the probe made before the API starts serving, zero disables it.
func WithStartupProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout < 0 {
			return fmt.Errorf("startup probe timeout cannot be negative, got %v", timeout)
		}
		o.StartupProbeTimeout = timeout
		return nil
	}
}

// DefaultStartupProbeTimeout is the default bound on the startup probe.
func DefaultStartupProbeTimeout() time.Duration {
	return 5 * time.Second
}

// defaultOptions returns Options with default values.
func defaultOptions() Options {
	return Options{
		HealthChecks:        true,
		StartupProbeTimeout: DefaultStartupProbeTimeout(),
	}
}
