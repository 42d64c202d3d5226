//go:build docsgen_api
// +build docsgen_api

package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/daemon"
	"github.com/mozilla-ai/fingate/internal/gateway"
	"github.com/mozilla-ai/fingate/internal/perms"
	"github.com/mozilla-ai/fingate/internal/registry"
)

// docsSettings describes a gateway whose servers are never contacted, route registration only needs their IDs.
func docsSettings() config.Settings {
	return config.Settings{
		Gateway: config.GatewaySettings{
			RetryCount:          config.DefaultRetryCount(),
			EscalationThreshold: config.DefaultEscalationThreshold(),
			HealthCheckInterval: config.DefaultHealthCheckInterval(),
			HealthCheckTimeout:  config.DefaultHealthCheckTimeout(),
			PoolSize:            1,
			InitialBackoff:      config.DefaultInitialBackoff(),
			MaxBackoff:          config.DefaultMaxBackoff(),
			Jitter:              config.DefaultJitter(),
		},
		Servers: []config.ServerConfig{
			{
				ID:       registry.CatalogMarketData,
				BaseURL:  "http://localhost:3001",
				Catalog:  registry.CatalogMarketData,
				Timeout:  time.Second,
				PoolSize: 1,
			},
			{
				ID:       registry.CatalogPayments,
				BaseURL:  "http://localhost:3000",
				Catalog:  registry.CatalogPayments,
				Timeout:  time.Second,
				PoolSize: 1,
			},
		},
	}
}

// main generates the OpenAPI specification for the gateway API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "fingate.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	sys, err := gateway.Build(logger, docsSettings())
	if err != nil {
		logger.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}

	deps, err := daemon.NewAPIDependencies(logger, sys.Gateway, "localhost:8090")
	if err != nil {
		logger.Error("invalid API dependencies", "error", err)
		os.Exit(1)
	}

	server, err := daemon.NewAPIServer(deps)
	if err != nil {
		logger.Error("failed to create API server", "error", err)
		os.Exit(1)
	}

	// Render the OpenAPI document through the same handler the daemon uses.
	handler, apiPathPrefix, err := server.Handler()
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK {
		logger.Error("failed to generate OpenAPI YAML", "status", rec.Code)
		os.Exit(1)
	}
	yamlBytes := rec.Body.Bytes()

	// Ensure the docs directory exists.
	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, perms.Directory); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	// Write the YAML to the output file.
	if err := os.WriteFile(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
