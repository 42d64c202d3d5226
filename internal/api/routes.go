package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/fingate/internal/contracts"
)

// APIVersion is the version used in the OpenAPI document and URL paths.
const APIVersion = "v1"

// Backend is the gateway surface served over HTTP.
type Backend interface {
	contracts.Gateway
	contracts.GatewayInspector
}

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(router huma.API, backend Backend) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if backend == nil || reflect.ValueOf(backend).IsNil() {
		return "", fmt.Errorf("gateway cannot be nil")
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	// Group all routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, backend, "/health")
	RegisterDiagnosticsRoutes(versionedGroup, backend, "/diagnostics")
	RegisterServerRoutes(versionedGroup, backend, "/servers")
	RegisterPortfolioRoutes(versionedGroup, backend, "/portfolio")

	return apiPathPrefix, nil
}
