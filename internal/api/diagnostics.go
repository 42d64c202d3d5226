package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
)

// DomainDiagnosticsReport wraps domain.DiagnosticsReport for API conversion.
type DomainDiagnosticsReport domain.DiagnosticsReport

// DiagnosticsReport is the API representation of the gateway's view of its servers.
type DiagnosticsReport struct {
	GeneratedAt     time.Time          `json:"generatedAt" yaml:"generatedAt"`
	Summary         DiagnosticsSummary `json:"summary" yaml:"summary"`
	Servers         []ServerReport     `json:"servers" yaml:"servers"`
	Recommendations []string           `json:"recommendations" yaml:"recommendations"`
}

// DiagnosticsSummary counts servers by state.
type DiagnosticsSummary struct {
	Total       int `json:"total" yaml:"total"`
	Connected   int `json:"connected" yaml:"connected"`
	Degraded    int `json:"degraded" yaml:"degraded"`
	Unreachable int `json:"unreachable" yaml:"unreachable"`
	Unknown     int `json:"unknown" yaml:"unknown"`
	Disabled    int `json:"disabled" yaml:"disabled"`
}

// ServerReport combines a server's health with the parts of its configuration relevant to diagnosis.
type ServerReport struct {
	Health        ServerHealth `json:"health" yaml:"health"`
	URL           string       `json:"url" yaml:"url"`
	Enabled       bool         `json:"enabled" yaml:"enabled"`
	HasCredential bool         `json:"hasCredential" yaml:"hasCredential"`
	Tools         []string     `json:"tools" yaml:"tools"`
}

// DiagnosticsResponse is the response for GET /diagnostics.
type DiagnosticsResponse struct {
	Body DiagnosticsReport
}

// ToAPIType converts a wrapped domain report to the API type.
func (d DomainDiagnosticsReport) ToAPIType() (DiagnosticsReport, error) {
	servers := make([]ServerReport, 0, len(d.Servers))
	for _, s := range d.Servers {
		h, err := DomainServerHealth(s.Health).ToAPIType()
		if err != nil {
			return DiagnosticsReport{}, err
		}

		tools := s.Tools
		if tools == nil {
			tools = []string{}
		}

		servers = append(servers, ServerReport{
			Health:        h,
			URL:           s.URL,
			Enabled:       s.Enabled,
			HasCredential: s.HasCredential,
			Tools:         tools,
		})
	}

	return DiagnosticsReport{
		GeneratedAt:     d.GeneratedAt,
		Summary:         DiagnosticsSummary(d.Summary),
		Servers:         servers,
		Recommendations: d.Recommendations,
	}, nil
}

// RegisterDiagnosticsRoutes sets up the diagnostics endpoint.
func RegisterDiagnosticsRoutes(routerAPI huma.API, gateway contracts.GatewayInspector, apiPathPrefix string) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getDiagnostics",
			Method:      http.MethodGet,
			Path:        apiPathPrefix,
			Summary:     "Get a diagnostics report for all servers",
			Description: "Reports recorded health and configuration problems without contacting any server. " +
				"Per-server entries are omitted when detail is summary or minimal",
			Tags:        []string{"Health"},
		},
		func(ctx context.Context, _ *struct{}) (*DiagnosticsResponse, error) {
			report, err := DomainDiagnosticsReport(gateway.Report()).ToAPIType()
			if err != nil {
				return nil, err
			}
			return &DiagnosticsResponse{Body: report}, nil
		},
	)
}

// diagnosticsDetailTransformer drops the per-server entries from a diagnostics report
// unless full detail is requested, leaving the summary and recommendations.
func diagnosticsDetailTransformer(ctx huma.Context, _ string, v any) (any, error) {
	report, ok := v.(DiagnosticsReport)
	if !ok {
		return v, nil
	}

	if detailLevel(ctx.Query(queryParamDetail)).Normalize() == detailFull {
		return v, nil
	}

	report.Servers = []ServerReport{}

	return report, nil
}
