package domain

import (
	"encoding/json"
	"time"
)

const (
	ResultSuccess  ResultKind = "success"
	ResultFailure  ResultKind = "failure"
	ResultFallback ResultKind = "fallback"
)

const (
	// FailureTimeout indicates the remote server did not answer within the timeout.
	FailureTimeout FailureKind = "timeout"

	// FailureUnauthorized indicates the remote server rejected the credential (HTTP 401/403).
	FailureUnauthorized FailureKind = "unauthorized"

	// FailureProtocol indicates a malformed exchange, a tool-level error, or a rejected tool/argument set.
	FailureProtocol FailureKind = "protocol_error"

	// FailureUnreachable indicates a network level failure such as DNS resolution or connection refusal.
	FailureUnreachable FailureKind = "unreachable"

	// FailureUnknownServer indicates the caller referenced a server that is not configured.
	FailureUnknownServer FailureKind = "unknown_server"

	// FailureCanceled indicates the caller abandoned the request.
	FailureCanceled FailureKind = "canceled"

	// FailureDisabled is used as a fallback reason when a server is configured in demo mode.
	FailureDisabled FailureKind = "disabled"
)

// ResultKind discriminates the ToolResult variants.
type ResultKind string

// FailureKind classifies why a tool invocation did not succeed.
type FailureKind string

// ToolResult is the uniform outcome of a tool invocation.
// It is a tagged variant discriminated by Kind:
//   - ResultSuccess: Payload, Latency
//   - ResultFailure: FailureKind, Message
//   - ResultFallback: Payload, Reason, Message
//
// ServerID is always populated.
type ToolResult struct {
	Kind     ResultKind
	ServerID string
	Tool     string

	// Payload is the structured tool result, present for Success and Fallback.
	Payload json.RawMessage

	// Latency is the duration of the successful attempt.
	Latency time.Duration

	// FailureKind classifies a Failure.
	FailureKind FailureKind

	// Reason is the failure kind that triggered a Fallback.
	Reason FailureKind

	// Message is a human-readable description of the failure (or of the failure that triggered a Fallback).
	Message string

	// Attempts is the number of transport attempts made to produce this result.
	Attempts int
}

// Success constructs a successful ToolResult.
func Success(serverID string, tool string, payload json.RawMessage, latency time.Duration) ToolResult {
	return ToolResult{
		Kind:     ResultSuccess,
		ServerID: serverID,
		Tool:     tool,
		Payload:  payload,
		Latency:  latency,
	}
}

// Failure constructs a failed ToolResult.
func Failure(serverID string, tool string, kind FailureKind, message string) ToolResult {
	return ToolResult{
		Kind:        ResultFailure,
		ServerID:    serverID,
		Tool:        tool,
		FailureKind: kind,
		Message:     message,
	}
}

// Fallback constructs a ToolResult carrying synthetic data.
func Fallback(serverID string, tool string, payload json.RawMessage, reason FailureKind, message string) ToolResult {
	return ToolResult{
		Kind:     ResultFallback,
		ServerID: serverID,
		Tool:     tool,
		Payload:  payload,
		Reason:   reason,
		Message:  message,
	}
}

// IsSuccess reports whether the result came from the real remote server.
func (r ToolResult) IsSuccess() bool {
	return r.Kind == ResultSuccess
}

// IsFailure reports whether the result carries no usable payload.
func (r ToolResult) IsFailure() bool {
	return r.Kind == ResultFailure
}

// IsFallback reports whether the result carries synthetic data.
func (r ToolResult) IsFallback() bool {
	return r.Kind == ResultFallback
}

// HasPayload reports whether the result carries a payload callers can consume.
func (r ToolResult) HasPayload() bool {
	return r.Kind != ResultFailure && len(r.Payload) > 0
}
