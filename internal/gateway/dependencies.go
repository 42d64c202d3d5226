package gateway

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
)

// Dependencies contains required dependencies for the Gateway.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// Logger for gateway operations.
	Logger hclog.Logger

	// Settings is the resolved configuration, servers are reported in this order.
	Settings config.Settings

	// Invoker calls tools on remote servers.
	Invoker contracts.ToolInvoker

	// Monitor tracks server health.
	Monitor contracts.MCPHealthMonitor

	// Fallback produces synthetic payloads for failed calls.
	Fallback contracts.FallbackProvider

	// Catalog lists the tools available on each server.
	Catalog contracts.ToolCatalog
}

// NewDependencies creates validated Dependencies.
func NewDependencies(
	logger hclog.Logger,
	settings config.Settings,
	invoker contracts.ToolInvoker,
	monitor contracts.MCPHealthMonitor,
	fallback contracts.FallbackProvider,
	catalog contracts.ToolCatalog,
) (Dependencies, error) {
	deps := Dependencies{
		Logger:   logger,
		Settings: settings,
		Invoker:  invoker,
		Monitor:  monitor,
		Fallback: fallback,
		Catalog:  catalog,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if isNil(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNil(d.Invoker) {
		return fmt.Errorf("tool invoker cannot be nil")
	}
	if isNil(d.Monitor) {
		return fmt.Errorf("health monitor cannot be nil")
	}
	if isNil(d.Fallback) {
		return fmt.Errorf("fallback provider cannot be nil")
	}
	if isNil(d.Catalog) {
		return fmt.Errorf("tool catalog cannot be nil")
	}
	if len(d.Settings.Servers) == 0 {
		return fmt.Errorf("server configurations not found")
	}

	seen := make(map[string]struct{}, len(d.Settings.Servers))
	for _, srv := range d.Settings.Servers {
		if _, ok := seen[srv.ID]; ok {
			return fmt.Errorf("duplicate server configuration: %s", srv.ID)
		}
		seen[srv.ID] = struct{}{}

		if _, err := d.Monitor.Status(srv.ID); err != nil {
			return fmt.Errorf("server '%s': %w", srv.ID, err)
		}
	}

	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
