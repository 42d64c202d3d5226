package gateway

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/fingate/internal/domain"
)

// Report extends Diagnostics with configuration details and recommendations.
// Like Diagnostics it never contacts the servers.
func (g *Gateway) Report() domain.DiagnosticsReport {
	report := domain.DiagnosticsReport{
		GeneratedAt: g.now().UTC(),
		Servers:     make([]domain.ServerReport, 0, len(g.settings.Servers)),
	}

	health := make(map[string]domain.ServerHealth, len(g.settings.Servers))
	for _, h := range g.monitor.StatusAll() {
		health[h.ServerID] = h
	}

	for _, srv := range g.settings.Servers {
		h, ok := health[srv.ID]
		if !ok {
			h = domain.ServerHealth{ServerID: srv.ID, State: domain.HealthStateUnknown}
		}

		var tools []string
		if ts, err := g.catalog.Tools(srv.ID); err == nil {
			tools = toolNames(ts)
		}

		report.Servers = append(report.Servers, domain.ServerReport{
			Health:        h,
			URL:           srv.BaseURL,
			Enabled:       srv.Enabled,
			HasCredential: srv.HasCredential(),
			Tools:         tools,
		})

		report.Summary.Total++
		if !srv.Enabled {
			report.Summary.Disabled++
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("'%s' is in demo mode and serves synthetic data, set enabled = true to use the live server", srv.ID))
			continue
		}

		if !srv.HasCredential() {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("'%s' has no credential, set credential_env to the variable holding its API key", srv.ID))
		}

		switch h.State {
		case domain.HealthStateConnected:
			report.Summary.Connected++
		case domain.HealthStateDegraded:
			report.Summary.Degraded++
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("'%s' is degraded after %d consecutive failures: %s", srv.ID, h.ConsecutiveFailures, h.LastError))
		case domain.HealthStateUnreachable:
			report.Summary.Unreachable++
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("'%s' is unreachable, calls are served from fallback data until it recovers: %s", srv.ID, h.LastError))
		default:
			report.Summary.Unknown++
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("'%s' has not been checked yet, run 'fingate status --probe'", srv.ID))
		}
	}

	if len(report.Recommendations) == 0 {
		report.Recommendations = []string{"All servers are connected"}
	}

	return report
}

func toolNames(tools []mcp.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}
