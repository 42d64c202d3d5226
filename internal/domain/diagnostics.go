package domain

import "time"

// DiagnosticsReport is a point in time summary of the gateway's view of its servers.
type DiagnosticsReport struct {
	GeneratedAt     time.Time
	Summary         DiagnosticsSummary
	Servers         []ServerReport
	Recommendations []string
}

// DiagnosticsSummary counts servers by state.
type DiagnosticsSummary struct {
	Total       int
	Connected   int
	Degraded    int
	Unreachable int
	Unknown     int
	Disabled    int
}

// ServerReport combines a server's health with the parts of its configuration relevant to diagnosis.
type ServerReport struct {
	Health        ServerHealth
	URL           string
	Enabled       bool
	HasCredential bool
	Tools         []string
}
