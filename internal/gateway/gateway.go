// Package gateway is the facade agents use to call remote MCP tools.
// It routes each call to its server, records the outcome in the health monitor
// and substitutes synthetic data when a server fails.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
)

var (
	_ contracts.Gateway          = (*Gateway)(nil)
	_ contracts.GatewayInspector = (*Gateway)(nil)
)

// Gateway routes tool calls to remote servers.
type Gateway struct {
	logger   hclog.Logger
	settings config.Settings
	servers  map[string]config.ServerConfig
	invoker  contracts.ToolInvoker
	monitor  contracts.MCPHealthMonitor
	fallback contracts.FallbackProvider
	catalog  contracts.ToolCatalog
	metrics  *metrics
	now      func() time.Time
}

// New creates a Gateway.
func New(deps Dependencies, opts ...Option) (*Gateway, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(options.MeterProvider)
	if err != nil {
		return nil, err
	}

	servers := make(map[string]config.ServerConfig, len(deps.Settings.Servers))
	for _, srv := range deps.Settings.Servers {
		servers[srv.ID] = srv.Clone()
	}

	return &Gateway{
		logger:   deps.Logger.Named("gateway"),
		settings: deps.Settings,
		servers:  servers,
		invoker:  deps.Invoker,
		monitor:  deps.Monitor,
		fallback: deps.Fallback,
		catalog:  deps.Catalog,
		metrics:  m,
		now:      options.Clock,
	}, nil
}

// Invoke calls toolName on serverID.
//
// An unknown server yields a Failure. A disabled server yields a Fallback without contacting it.
// A call that fails after reaching the transport is recorded against the server's health and,
// when synthetic data can be produced, returned as a Fallback carrying the failure kind as its reason.
// Calls rejected before any attempt, and calls canceled by the caller, are returned as Failures
// without touching health.
func (g *Gateway) Invoke(ctx context.Context, serverID string, toolName string, args map[string]any) domain.ToolResult {
	start := time.Now()
	result := g.invoke(ctx, serverID, toolName, args)
	g.metrics.record(ctx, result, time.Since(start))

	return result
}

func (g *Gateway) invoke(ctx context.Context, serverID string, toolName string, args map[string]any) domain.ToolResult {
	srv, ok := g.servers[serverID]
	if !ok {
		g.logger.Warn("Tool call for unknown server", "server", serverID, "tool", toolName)
		return domain.Failure(serverID, toolName, domain.FailureUnknownServer, "server is not configured: "+serverID)
	}

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return domain.Failure(serverID, toolName, domain.FailureCanceled, "canceled before the call was sent")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.Failure(serverID, toolName, domain.FailureTimeout, "caller deadline expired before the call was sent")
	}

	if !srv.Enabled {
		return g.substitute(domain.Failure(serverID, toolName, domain.FailureDisabled, "server is in demo mode"), args)
	}

	result := g.invoker.Call(ctx, srv, toolName, args)

	switch {
	case result.IsSuccess():
		g.record(serverID, domain.Succeeded(result.Latency))
		return result
	case result.FailureKind == domain.FailureCanceled || errors.Is(ctx.Err(), context.Canceled):
		result.FailureKind = domain.FailureCanceled
		return result
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		// The caller's own deadline expired, which says nothing about the server.
		result.FailureKind = domain.FailureTimeout
		return result
	case result.Attempts == 0:
		// Rejected locally, the server was never contacted.
		return result
	}

	g.record(serverID, domain.Failed(result.FailureKind, result.Message))

	return g.substitute(result, args)
}

// substitute converts failed into a Fallback, or returns it unchanged when no payload can be produced.
func (g *Gateway) substitute(failed domain.ToolResult, args map[string]any) domain.ToolResult {
	payload, err := g.fallback.Fallback(failed.ServerID, failed.Tool, args)
	if err != nil {
		g.logger.Error(
			"Failed to produce fallback data",
			"server", failed.ServerID,
			"tool", failed.Tool,
			"reason", failed.FailureKind,
			"error", err,
		)
		return failed
	}

	g.logger.Info(
		"Serving fallback data",
		"server", failed.ServerID,
		"tool", failed.Tool,
		"reason", failed.FailureKind,
	)

	result := domain.Fallback(failed.ServerID, failed.Tool, payload, failed.FailureKind, failed.Message)
	result.Attempts = failed.Attempts

	return result
}

func (g *Gateway) record(serverID string, outcome domain.Outcome) {
	h, err := g.monitor.Record(serverID, outcome)
	if err != nil {
		g.logger.Error("Failed to record server health", "server", serverID, "error", err)
		return
	}

	if !outcome.Success {
		g.logger.Warn(
			"Tool call failed",
			"server", serverID,
			"state", h.State,
			"failures", h.ConsecutiveFailures,
			"error", outcome.Message,
		)
	}
}

// Diagnostics returns the health of every configured server in configuration order.
// It is a pure read.
func (g *Gateway) Diagnostics() []domain.ServerHealth {
	return g.monitor.StatusAll()
}

// Health returns the health of a single server.
func (g *Gateway) Health(serverID string) (domain.ServerHealth, error) {
	return g.monitor.Status(serverID)
}

// Servers returns the resolved configuration of every server in configuration order.
func (g *Gateway) Servers() []config.ServerConfig {
	out := make([]config.ServerConfig, 0, len(g.settings.Servers))
	for _, srv := range g.settings.Servers {
		out = append(out, srv.Clone())
	}
	return out
}

// Catalog returns the tool catalog used to validate calls.
func (g *Gateway) Catalog() contracts.ToolCatalog {
	return g.catalog
}
