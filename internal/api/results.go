package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mozilla-ai/fingate/internal/domain"
)

// DomainToolResult wraps domain.ToolResult for API conversion.
type DomainToolResult domain.ToolResult

// ToolResult is the API representation of the outcome of a tool call.
type ToolResult struct {
	Kind        string `doc:"success, failure or fallback" json:"kind" yaml:"kind"`
	Server      string `json:"server" yaml:"server"`
	Tool        string `json:"tool" yaml:"tool"`
	Payload     any    `doc:"Tool result, synthetic when kind is fallback" json:"payload,omitempty" yaml:"payload,omitempty"`
	Latency     string `json:"latency,omitempty" yaml:"latency,omitempty"`
	FailureKind string `json:"failureKind,omitempty" yaml:"failureKind,omitempty"`
	Reason      string `doc:"Failure kind that triggered the fallback" json:"reason,omitempty" yaml:"reason,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
	Attempts    int    `json:"attempts" yaml:"attempts"`
}

// ToAPIType converts a wrapped domain result to the API type.
func (d DomainToolResult) ToAPIType() (ToolResult, error) {
	var payload any
	if len(d.Payload) > 0 {
		if err := json.Unmarshal(d.Payload, &payload); err != nil {
			return ToolResult{}, fmt.Errorf("failed to decode tool result payload: %w", err)
		}
	}

	var latency string
	if d.Kind == domain.ResultSuccess {
		latency = d.Latency.String()
	}

	return ToolResult{
		Kind:        string(d.Kind),
		Server:      d.ServerID,
		Tool:        d.Tool,
		Payload:     payload,
		Latency:     latency,
		FailureKind: string(d.FailureKind),
		Reason:      string(d.Reason),
		Message:     d.Message,
		Attempts:    d.Attempts,
	}, nil
}

// statusFor returns the HTTP status for a tool call result.
// Successes and fallbacks both carry usable data and are reported as 200.
func statusFor(r domain.ToolResult) int {
	if !r.IsFailure() {
		return http.StatusOK
	}

	switch {
	case r.FailureKind == domain.FailureUnknownServer:
		return http.StatusNotFound
	case r.FailureKind == domain.FailureCanceled:
		return http.StatusServiceUnavailable
	case r.FailureKind == domain.FailureDisabled:
		return http.StatusBadGateway
	case r.FailureKind == domain.FailureTimeout && r.Attempts == 0:
		// The caller's deadline expired before anything was sent.
		return http.StatusGatewayTimeout
	case r.Attempts == 0:
		// Rejected before any attempt.
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
