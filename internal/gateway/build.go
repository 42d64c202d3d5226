package gateway

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/fallback"
	"github.com/mozilla-ai/fingate/internal/health"
	"github.com/mozilla-ai/fingate/internal/invoker"
	"github.com/mozilla-ai/fingate/internal/registry"
	"github.com/mozilla-ai/fingate/internal/transport"
)

// System is a fully wired gateway along with the components callers may need directly.
type System struct {
	Gateway   *Gateway
	Prober    *health.Prober
	Registry  *registry.Registry
	Transport *transport.Client
}

// Build wires a gateway and its collaborators from resolved settings.
func Build(logger hclog.Logger, settings config.Settings, opts ...Option) (*System, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	client, err := transport.NewClient(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	reg, err := registry.New(logger, settings.Servers)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool registry: %w", err)
	}

	inv, err := invoker.New(
		logger,
		client,
		reg,
		invoker.WithBackoff(settings.Gateway.InitialBackoff, settings.Gateway.MaxBackoff),
		invoker.WithJitter(settings.Gateway.Jitter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool invoker: %w", err)
	}

	monitor, err := health.NewMonitor(
		settings.ServerIDs(),
		health.WithEscalationThreshold(settings.Gateway.EscalationThreshold),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health monitor: %w", err)
	}

	prober, err := health.NewProber(
		logger,
		monitor,
		client,
		settings.Servers,
		health.WithInterval(settings.Gateway.HealthCheckInterval),
		health.WithTimeout(settings.Gateway.HealthCheckTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health prober: %w", err)
	}

	fb, err := fallback.New(settings.Servers)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback provider: %w", err)
	}

	deps, err := NewDependencies(logger, settings, inv, monitor, fb, reg)
	if err != nil {
		return nil, err
	}

	gw, err := New(deps, opts...)
	if err != nil {
		return nil, err
	}

	return &System{
		Gateway:   gw,
		Prober:    prober,
		Registry:  reg,
		Transport: client,
	}, nil
}
