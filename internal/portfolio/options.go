package portfolio

import (
	"fmt"
	"strings"
	"time"
)

// Options contains optional configuration for Analyze.
type Options struct {
	// ServerID is the market data server queried for prices.
	ServerID string

	// Clock stamps the analysis.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		ServerID: DefaultServerID,
		Clock:    time.Now,
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

// DefaultServerID is the market data server used when none is configured.
const DefaultServerID = "market-data"

// WithServer configures the market data server queried for prices.
func WithServer(id string) Option {
	return func(o *Options) error {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("server id cannot be empty")
		}
		o.ServerID = id
		return nil
	}
}

// WithClock overrides the time source used to stamp the analysis.
func WithClock(clock func() time.Time) Option {
	return func(o *Options) error {
		if clock == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = clock
		return nil
	}
}
