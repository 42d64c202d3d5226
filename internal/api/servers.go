package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/errors"
)

// Server is the API representation of a configured server. Credentials are never exposed.
type Server struct {
	ID            string   `doc:"ID of the server"                          json:"id"`
	URL           string   `doc:"JSON-RPC endpoint of the server"           json:"url"`
	Catalog       string   `doc:"Tool catalog served by the server"         json:"catalog"`
	Enabled       bool     `doc:"False when the server is in demo mode"     json:"enabled"`
	HasCredential bool     `doc:"Whether a credential is configured"        json:"hasCredential"`
	Tools         []string `doc:"Names of the tools callable on the server" json:"tools"`
}

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body struct {
		Servers []Server `json:"servers"`
	}
}

// ServerToolsRequest represents the incoming API request for the tool schemas of a server.
type ServerToolsRequest struct {
	ID string `doc:"ID of the server to lookup tools for" example:"market-data" path:"id"`
}

// ServerToolCallRequest represents the incoming API request to call a tool on a particular server.
type ServerToolCallRequest struct {
	ID   string         `doc:"ID of the server"         example:"market-data" path:"id"`
	Tool string         `doc:"Name of the tool to call" example:"get_quotes"  path:"tool"`
	Body map[string]any `doc:"Arguments for the tool"   required:"false"`
}

// ToolCallResponse represents the wrapped API response for calling a tool.
// Fallback results are returned with a 200 status, the kind and reason headers identify synthetic data.
type ToolCallResponse struct {
	Status         int
	ResultKind     string `header:"Fingate-Result-Kind"`
	FallbackReason string `header:"Fingate-Fallback-Reason"`
	Body           ToolResult
}

// RegisterServerRoutes sets up server and tool API endpoints.
func RegisterServerRoutes(routerAPI huma.API, gateway Backend, apiPathPrefix string) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			return handleServers(gateway)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listTools",
			Method:      http.MethodGet,
			Path:        "/{id}/tools",
			Summary:     "List server tools",
			Description: "Returns tools with configurable detail level via ?detail= query parameter (minimal, summary, full)",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolsRequest) (*ToolsResponse[Tool], error) {
			return handleServerTools(gateway.Catalog(), input.ID)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "callTool",
			Method:      http.MethodPost,
			Path:        "/{id}/tools/{tool}",
			Summary:     "Call a tool for a server",
			Description: "Calls the tool, serving synthetic data when the server fails or is in demo mode",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolCallRequest) (*ToolCallResponse, error) {
			return handleServerToolCall(ctx, gateway, input.ID, input.Tool, input.Body)
		},
	)
}

// handleServers returns the configured MCP servers in configuration order.
func handleServers(gateway contracts.GatewayInspector) (*ServersResponse, error) {
	configured := gateway.Servers()
	catalog := gateway.Catalog()

	servers := make([]Server, 0, len(configured))
	for _, srv := range configured {
		tools, err := catalog.Tools(srv.ID)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(tools))
		for _, t := range tools {
			names = append(names, t.Name)
		}

		servers = append(servers, Server{
			ID:            srv.ID,
			URL:           srv.BaseURL,
			Catalog:       srv.Catalog,
			Enabled:       srv.Enabled,
			HasCredential: srv.HasCredential(),
			Tools:         names,
		})
	}

	resp := &ServersResponse{}
	resp.Body.Servers = servers

	return resp, nil
}

// handleServerTools returns the schemas for the tools that are callable on a given server.
func handleServerTools(catalog contracts.ToolCatalog, id string) (*ToolsResponse[Tool], error) {
	tools, err := catalog.Tools(id)
	if err != nil {
		return nil, err
	}

	data, err := convertAll(tools, func(t mcp.Tool) Convertible[Tool] { return domainTool(t) })
	if err != nil {
		return nil, err
	}

	resp := &ToolsResponse[Tool]{}
	resp.Body.Tools = data

	return resp, nil
}

// handleServerToolCall calls a tool through the gateway and reports the result.
func handleServerToolCall(
	ctx context.Context,
	gateway contracts.Gateway,
	server string,
	tool string,
	args map[string]any,
) (*ToolCallResponse, error) {
	if args == nil {
		args = map[string]any{}
	}

	result := gateway.Invoke(ctx, server, tool, args)

	body, err := DomainToolResult(result).ToAPIType()
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", errors.ErrToolCallFailed, server, tool, err)
	}

	return &ToolCallResponse{
		Status:         statusFor(result),
		ResultKind:     string(result.Kind),
		FallbackReason: string(result.Reason),
		Body:           body,
	}, nil
}
