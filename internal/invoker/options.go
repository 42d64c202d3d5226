package invoker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Options contains optional configuration for the Invoker.
// NewOptions should be used to create instances of Options.
type Options struct {
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration

	// Jitter is the fraction (0..1) of random variation applied to each delay.
	Jitter float64

	// Random returns a value in [0,1) used to apply jitter.
	Random func() float64

	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
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

	if options.MaxBackoff < options.InitialBackoff {
		return Options{}, fmt.Errorf(
			"max backoff (%v) must not be less than initial backoff (%v)",
			options.MaxBackoff,
			options.InitialBackoff,
		)
	}

	return options, nil
}

// WithBackoff configures the exponential backoff range.
func WithBackoff(initial time.Duration, maxDelay time.Duration) Option {
	return func(o *Options) error {
		if initial <= 0 {
			return fmt.Errorf("initial backoff must be positive, got %v", initial)
		}
		if maxDelay <= 0 {
			return fmt.Errorf("max backoff must be positive, got %v", maxDelay)
		}
		o.InitialBackoff = initial
		o.MaxBackoff = maxDelay
		return nil
	}
}

// WithJitter configures the fraction of random variation applied to each delay.
func WithJitter(jitter float64) Option {
	return func(o *Options) error {
		if jitter < 0 || jitter > 1 {
			return fmt.Errorf("jitter must be between 0 and 1, got %v", jitter)
		}
		o.Jitter = jitter
		return nil
	}
}

// WithRandom overrides the source of randomness used for jitter.
func WithRandom(fn func() float64) Option {
	return func(o *Options) error {
		if fn == nil {
			return fmt.Errorf("random source cannot be nil")
		}
		o.Random = fn
		return nil
	}
}

// WithSleep overrides how the invoker waits between retries.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Options) error {
		if fn == nil {
			return fmt.Errorf("sleep function cannot be nil")
		}
		o.Sleep = fn
		return nil
	}
}

// DefaultInitialBackoff is the default delay before the first retry.
func DefaultInitialBackoff() time.Duration {
	return 200 * time.Millisecond
}

// DefaultMaxBackoff is the default cap on the delay between retries.
func DefaultMaxBackoff() time.Duration {
	return 5 * time.Second
}

// DefaultJitter is the default fraction of random variation applied to each delay.
func DefaultJitter() float64 {
	return 0.2
}

func defaultOptions() Options {
	return Options{
		InitialBackoff: DefaultInitialBackoff(),
		MaxBackoff:     DefaultMaxBackoff(),
		Jitter:         DefaultJitter(),
		Random:         rand.Float64,
		Sleep:          sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
