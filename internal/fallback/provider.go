// Package fallback produces deterministic synthetic payloads shaped like the
// results of the remote tools, for use when a server cannot serve a call.
//
// Every payload is an MCP tools/call result envelope carrying the synthetic data
// as structuredContent and as JSON text, the same shape a live server returns.
package fallback

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/errors"
	"github.com/mozilla-ai/fingate/internal/registry"
)

var _ contracts.FallbackProvider = (*Provider)(nil)

// Provider builds synthetic payloads. It performs no I/O and the same
// (server, tool, arguments) always produces the same payload.
type Provider struct {
	catalogs map[string]string
	epoch    time.Time
}

// handler builds the payload for one tool.
type handler func(p *Provider, args map[string]any) (any, error)

var handlers = map[string]map[string]handler{
	registry.CatalogMarketData: {
		registry.ToolGetQuotes: (*Provider).quotes,
		registry.ToolGetLTP:    (*Provider).ltp,
		registry.ToolGetOHLC:   (*Provider).ohlc,
	},
	registry.CatalogPayments: {
		registry.ToolListCharges:   (*Provider).charges,
		registry.ToolGetBalance:    (*Provider).balance,
		registry.ToolListCustomers: (*Provider).customers,
	},
}

// New creates a Provider which resolves each server's payload shapes from its catalog.
func New(servers []config.ServerConfig, opts ...Option) (*Provider, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	catalogs := make(map[string]string, len(servers))
	for _, srv := range servers {
		catalogs[srv.ID] = srv.Catalog
	}

	return &Provider{
		catalogs: catalogs,
		epoch:    o.Epoch.UTC(),
	}, nil
}

// Fallback returns the synthetic payload for a tool call.
// Tools without a dedicated shape get a generic payload echoing the request.
func (p *Provider) Fallback(serverID string, toolName string, args map[string]any) (json.RawMessage, error) {
	catalog, ok := p.catalogs[serverID]
	if !ok || catalog == "" {
		catalog = serverID
	}

	var payload any
	if h, ok := handlers[catalog][toolName]; ok {
		v, err := h(p, args)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", errors.ErrFallbackUnavailable, serverID, toolName, err)
		}
		payload = v
	} else {
		payload = genericPayload{
			Server:    serverID,
			Tool:      toolName,
			Arguments: args,
			Note:      "synthetic data, the remote server could not serve this call",
		}
	}

	data, err := NewToolResult(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", errors.ErrFallbackUnavailable, serverID, toolName, err)
	}

	return data, nil
}

// toolResult is the wire form of a tools/call result. isError is always written,
// mcp.CallToolResult drops it when false.
type toolResult struct {
	Content           []mcp.Content `json:"content"`
	StructuredContent any           `json:"structuredContent,omitempty"`
	IsError           bool          `json:"isError"`
}

// NewToolResult wraps structured data in a successful tools/call result envelope.
func NewToolResult(structured any) (json.RawMessage, error) {
	text, err := json.Marshal(structured)
	if err != nil {
		return nil, err
	}

	result := mcp.NewToolResultStructured(json.RawMessage(text), string(text))

	return json.Marshal(toolResult{
		Content:           result.Content,
		StructuredContent: result.StructuredContent,
		IsError:           result.IsError,
	})
}

type genericPayload struct {
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Note      string         `json:"note"`
}
