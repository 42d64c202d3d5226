package domain

import "time"

const (
	HealthStateUnknown     HealthState = "unknown"
	HealthStateConnected   HealthState = "connected"
	HealthStateDegraded    HealthState = "degraded"
	HealthStateUnreachable HealthState = "unreachable"
)

// HealthState classifies the connectivity of a remote MCP server, derived from recent call outcomes.
type HealthState string

// ServerHealth tracks the internal health state for a remote MCP server.
type ServerHealth struct {
	// ServerID is the configured identifier of the server.
	ServerID string

	// State is the current classification of the server.
	State HealthState

	// LastCheckedAt is when an outcome (invocation or probe) was last recorded, nil until the first outcome.
	LastCheckedAt *time.Time

	// LastSuccessfulAt is when the last successful outcome was recorded.
	LastSuccessfulAt *time.Time

	// LastLatency is the latency of the last successful outcome, nil when never measured.
	LastLatency *time.Duration

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastError describes the most recent failure, empty after a success.
	LastError string
}

// Outcome is a single completed interaction with a server, fed into the health state machine.
type Outcome struct {
	// Success reports whether the interaction succeeded.
	Success bool

	// Latency of the interaction, only meaningful on success.
	Latency time.Duration

	// Kind is the failure classification when Success is false.
	Kind FailureKind

	// Message describes the failure when Success is false.
	Message string
}

// Succeeded returns a successful Outcome with the given latency.
func Succeeded(latency time.Duration) Outcome {
	return Outcome{Success: true, Latency: latency}
}

// Failed returns a failed Outcome.
func Failed(kind FailureKind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}
