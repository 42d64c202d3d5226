package contracts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/domain"
)

// MCPTransport sends JSON-RPC requests to remote MCP servers.
type MCPTransport interface {
	// Send issues a single tools/call attempt and returns the raw result.
	Send(
		ctx context.Context,
		cfg config.ServerConfig,
		requestID string,
		toolName string,
		args map[string]any,
		timeout time.Duration,
	) (json.RawMessage, error)

	// Handshake issues an MCP initialize request, used as a liveness probe.
	Handshake(ctx context.Context, cfg config.ServerConfig, timeout time.Duration) (json.RawMessage, error)

	// NewRequestID returns a fresh identifier for a single attempt.
	NewRequestID() string
}

// MCPHealthMonitor provides a way to interact with the health status of MCP servers.
type MCPHealthMonitor interface {
	// Status returns the health status for a single tracked server.
	Status(serverID string) (domain.ServerHealth, error)

	// StatusAll returns a copy of all server health records in configuration order.
	StatusAll() []domain.ServerHealth

	// Record applies an outcome to a tracked server and returns the updated record.
	Record(serverID string, outcome domain.Outcome) (domain.ServerHealth, error)
}

// ToolInvoker calls a tool on a remote server and normalizes the outcome.
type ToolInvoker interface {
	// Call invokes toolName on the server described by cfg.
	Call(ctx context.Context, cfg config.ServerConfig, toolName string, args map[string]any) domain.ToolResult
}

// FallbackProvider produces synthetic payloads shaped like genuine tool results.
type FallbackProvider interface {
	// Fallback returns a deterministic payload for the tool without any I/O.
	Fallback(serverID string, toolName string, args map[string]any) (json.RawMessage, error)
}

// ToolCatalog resolves the closed set of tools a server exposes.
type ToolCatalog interface {
	// Tools returns the tools exposed by the server, in a stable order.
	Tools(serverID string) ([]mcp.Tool, error)

	// Validate checks that the tool exists on the server and the arguments satisfy its input schema.
	Validate(serverID string, toolName string, args map[string]any) error
}

// Gateway is the single entry point agents use to call remote tools.
type Gateway interface {
	// Invoke calls a tool, falling back to synthetic data when the server fails.
	Invoke(ctx context.Context, serverID string, toolName string, args map[string]any) domain.ToolResult

	// Diagnostics returns the health of every configured server in configuration order.
	Diagnostics() []domain.ServerHealth
}

// GatewayInspector exposes read-only views of the gateway's configuration and health.
type GatewayInspector interface {
	// Health returns the health of a single server.
	Health(serverID string) (domain.ServerHealth, error)

	// Servers returns the resolved configuration of every server in configuration order.
	Servers() []config.ServerConfig

	// Catalog returns the tool catalog used to validate calls.
	Catalog() ToolCatalog

	// Report returns a diagnostics report with recommendations.
	Report() domain.DiagnosticsReport
}
