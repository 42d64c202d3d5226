package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
)

const (
	HealthStateConnected   HealthState = "connected"
	HealthStateDegraded    HealthState = "degraded"
	HealthStateUnreachable HealthState = "unreachable"
	HealthStateUnknown     HealthState = "unknown"
)

// DomainServerHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServerHealth domain.ServerHealth

// HealthState represents the current classification of a remote MCP server.
type HealthState string

// ServerHealth describes what the gateway currently knows about a remote MCP server's connectivity.
type ServerHealth struct {
	Server              string      `json:"server" yaml:"server"`
	State               HealthState `json:"state" yaml:"state"`
	ConsecutiveFailures int         `json:"consecutiveFailures" yaml:"consecutiveFailures"`
	Latency             *string     `json:"latency,omitempty" yaml:"latency,omitempty"`
	LastChecked         *time.Time  `json:"lastChecked,omitempty" yaml:"lastChecked,omitempty"`
	LastSuccessful      *time.Time  `json:"lastSuccessful,omitempty" yaml:"lastSuccessful,omitempty"`
	LastError           string      `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}

// ServersHealthResponse is the response for GET /health/servers.
type ServersHealthResponse struct {
	Body struct {
		Servers []ServerHealth `doc:"Tracked MCP server health in configuration order" json:"servers"`
	}
}

// ServerHealthRequest represents the incoming request for obtaining ServerHealth.
type ServerHealthRequest struct {
	ID string `doc:"ID of the server to check" example:"market-data" path:"id"`
}

// ServerHealthResponse represents the wrapped API response for a ServerHealth.
type ServerHealthResponse struct {
	Body ServerHealth
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainServerHealth) ToAPIType() (ServerHealth, error) {
	state, err := parseHealthState(d.State)
	if err != nil {
		return ServerHealth{}, err
	}

	var latency *string
	if d.LastLatency != nil {
		s := d.LastLatency.String()
		latency = &s
	}

	return ServerHealth{
		Server:              d.ServerID,
		State:               state,
		ConsecutiveFailures: d.ConsecutiveFailures,
		Latency:             latency,
		LastChecked:         d.LastCheckedAt,
		LastSuccessful:      d.LastSuccessfulAt,
		LastError:           d.LastError,
	}, nil
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, gateway Backend, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listServersHealth",
			Method:      http.MethodGet,
			Path:        "/servers",
			Summary:     "List the health of all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersHealthResponse, error) {
			return handleHealthServers(gateway)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getServerHealth",
			Method:      http.MethodGet,
			Path:        "/servers/{id}",
			Summary:     "Get the health of a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ServerHealthResponse, error) {
			return handleHealthServer(gateway, input.ID)
		},
	)
}

// handleHealthServers is the handler for retrieving the current health for all configured MCP servers.
func handleHealthServers(gateway contracts.Gateway) (*ServersHealthResponse, error) {
	servers, err := convertAll(
		gateway.Diagnostics(),
		func(h domain.ServerHealth) Convertible[ServerHealth] { return DomainServerHealth(h) },
	)
	if err != nil {
		return nil, err
	}

	resp := &ServersHealthResponse{}
	resp.Body.Servers = servers

	return resp, nil
}

// handleHealthServer is the handler for retrieving the current health of the specified MCP server.
func handleHealthServer(gateway contracts.GatewayInspector, id string) (*ServerHealthResponse, error) {
	health, err := gateway.Health(id)
	if err != nil {
		return nil, err
	}

	data, err := DomainServerHealth(health).ToAPIType()
	if err != nil {
		return nil, err
	}

	response := ServerHealthResponse{}
	response.Body = data

	return &response, nil
}

func parseHealthState(state domain.HealthState) (HealthState, error) {
	switch state {
	case domain.HealthStateConnected:
		return HealthStateConnected, nil
	case domain.HealthStateDegraded:
		return HealthStateDegraded, nil
	case domain.HealthStateUnreachable:
		return HealthStateUnreachable, nil
	case domain.HealthStateUnknown:
		return HealthStateUnknown, nil
	default:
		return "", fmt.Errorf("unknown health state: %s", state)
	}
}
