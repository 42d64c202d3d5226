package daemon

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/api"
)

// HealthProber runs background health checks until its context is done.
type HealthProber interface {
	Run(ctx context.Context) error
	ProbeAll(ctx context.Context)
}

// IdleCloser releases pooled connections on shutdown.
type IdleCloser interface {
	CloseIdleConnections()
}

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8090").
	APIAddr string

	// Logger for daemon and subcomponent (API server) operations.
	Logger hclog.Logger

	// Gateway serves the API.
	Gateway api.Backend

	// Prober runs the background health checks that feed the gateway's health monitor.
	Prober HealthProber

	// Transport is closed down when the daemon stops, optional.
	Transport IdleCloser
}

// NewDependencies creates and validates Dependencies.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	gateway api.Backend,
	prober HealthProber,
	transport IdleCloser,
) (Dependencies, error) {
	deps := Dependencies{
		APIAddr:   apiAddr,
		Logger:    logger,
		Gateway:   gateway,
		Prober:    prober,
		Transport: transport,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if d.Gateway == nil || reflect.ValueOf(d.Gateway).IsNil() {
		return fmt.Errorf("gateway cannot be nil")
	}

	if d.Prober == nil || reflect.ValueOf(d.Prober).IsNil() {
		return fmt.Errorf("health prober cannot be nil")
	}

	if d.Transport != nil && reflect.ValueOf(d.Transport).IsNil() {
		return fmt.Errorf("transport cannot be a nil pointer")
	}

	if len(d.Gateway.Servers()) == 0 {
		return fmt.Errorf("server configurations not found")
	}

	return nil
}
