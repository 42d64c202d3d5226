package transport

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Options contains optional configuration for the Client.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ClientInfo identifies this gateway in the MCP initialize handshake.
	ClientInfo mcp.Implementation

	// ProtocolVersion is advertised in the MCP initialize handshake.
	ProtocolVersion string

	// IDGenerator produces a request identifier for every attempt.
	IDGenerator func() string

	// Propagator injects trace context into outgoing request headers.
	Propagator propagation.TextMapPropagator

	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64
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

	return options, nil
}

// WithClientInfo configures the name and version sent during the initialize handshake.
func WithClientInfo(name string, version string) Option {
	return func(o *Options) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("client name cannot be empty")
		}
		o.ClientInfo = mcp.Implementation{Name: name, Version: strings.TrimSpace(version)}
		return nil
	}
}

// WithProtocolVersion configures the MCP protocol version advertised during the handshake.
func WithProtocolVersion(version string) Option {
	return func(o *Options) error {
		version = strings.TrimSpace(version)
		if version == "" {
			return fmt.Errorf("protocol version cannot be empty")
		}
		o.ProtocolVersion = version
		return nil
	}
}

// WithIDGenerator overrides how request identifiers are produced.
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) error {
		if fn == nil {
			return fmt.Errorf("id generator cannot be nil")
		}
		o.IDGenerator = fn
		return nil
	}
}

// WithPropagator overrides the trace context propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(o *Options) error {
		if p == nil {
			return fmt.Errorf("propagator cannot be nil")
		}
		o.Propagator = p
		return nil
	}
}

// WithMaxResponseBytes caps the size of response bodies read from servers.
func WithMaxResponseBytes(n int64) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("max response bytes must be positive, got %d", n)
		}
		o.MaxResponseBytes = n
		return nil
	}
}

// DefaultClientName is the client name sent in the initialize handshake.
func DefaultClientName() string {
	return "fingate"
}

// DefaultClientVersion is the client version sent in the initialize handshake.
func DefaultClientVersion() string {
	return "0.1.0"
}

// DefaultMaxResponseBytes is the default cap on response body size.
func DefaultMaxResponseBytes() int64 {
	return 8 << 20
}

func defaultOptions() Options {
	return Options{
		ClientInfo:       mcp.Implementation{Name: DefaultClientName(), Version: DefaultClientVersion()},
		ProtocolVersion:  mcp.LATEST_PROTOCOL_VERSION,
		IDGenerator:      uuid.NewString,
		Propagator:       otel.GetTextMapPropagator(),
		MaxResponseBytes: DefaultMaxResponseBytes(),
	}
}
