package fallback

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the Provider.
type Options struct {
	// Epoch anchors every timestamp in generated payloads.
	Epoch time.Time
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		Epoch: DefaultEpoch(),
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

// WithEpoch configures the instant generated timestamps are derived from.
func WithEpoch(epoch time.Time) Option {
	return func(o *Options) error {
		if epoch.IsZero() {
			return fmt.Errorf("epoch cannot be zero")
		}
		o.Epoch = epoch
		return nil
	}
}

// DefaultEpoch is the default anchor for generated timestamps.
func DefaultEpoch() time.Time {
	return time.Date(2024, time.November, 29, 15, 30, 0, 0, time.UTC)
}
