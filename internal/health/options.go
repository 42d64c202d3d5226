package health

import (
	"fmt"
	"time"
)

// MonitorOptions contains optional configuration for the Monitor.
type MonitorOptions struct {
	// EscalationThreshold is the number of consecutive failures that marks a server unreachable.
	EscalationThreshold int

	// Clock returns the current time, used to stamp records.
	Clock func() time.Time
}

// MonitorOption defines a functional option for configuring MonitorOptions.
type MonitorOption func(*MonitorOptions) error

// NewMonitorOptions creates MonitorOptions with optional configurations applied.
func NewMonitorOptions(opts ...MonitorOption) (MonitorOptions, error) {
	options := MonitorOptions{
		EscalationThreshold: DefaultEscalationThreshold(),
		Clock:               time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return MonitorOptions{}, err
		}
	}

	return options, nil
}

// WithEscalationThreshold configures how many consecutive failures mark a server unreachable.
func WithEscalationThreshold(n int) MonitorOption {
	return func(o *MonitorOptions) error {
		if n < 1 {
			return fmt.Errorf("escalation threshold must be at least 1, got %d", n)
		}
		o.EscalationThreshold = n
		return nil
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(clock func() time.Time) MonitorOption {
	return func(o *MonitorOptions) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = clock
		return nil
	}
}

// ProberOptions contains optional configuration for the Prober.
type ProberOptions struct {
	// Interval is how often each server is probed.
	Interval time.Duration

	// Timeout bounds a single probe.
	Timeout time.Duration
}

// ProberOption defines a functional option for configuring ProberOptions.
type ProberOption func(*ProberOptions) error

// NewProberOptions creates ProberOptions with optional configurations applied.
func NewProberOptions(opts ...ProberOption) (ProberOptions, error) {
	options := ProberOptions{
		Interval: DefaultProbeInterval(),
		Timeout:  DefaultProbeTimeout(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return ProberOptions{}, err
		}
	}

	return options, nil
}

// WithInterval configures how often each server is probed.
func WithInterval(interval time.Duration) ProberOption {
	return func(o *ProberOptions) error {
		if interval <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", interval)
		}
		o.Interval = interval
		return nil
	}
}

// WithTimeout configures the maximum time to wait for a probe response.
func WithTimeout(timeout time.Duration) ProberOption {
	return func(o *ProberOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("health check timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// DefaultEscalationThreshold is the default number of consecutive failures that marks a server unreachable.
func DefaultEscalationThreshold() int {
	return 3
}

// DefaultProbeInterval is the default interval between probes.
func DefaultProbeInterval() time.Duration {
	return 30 * time.Second
}

// DefaultProbeTimeout is the default timeout for a probe.
func DefaultProbeTimeout() time.Duration {
	return 3 * time.Second
}
