package transport

import (
	"errors"
	"fmt"

	"github.com/mozilla-ai/fingate/internal/domain"
)

// Kind classifies a transport failure.
type Kind string

const (
	// KindTimeout indicates the attempt exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindUnauthorized indicates the server rejected the credential (HTTP 401 or 403).
	KindUnauthorized Kind = "unauthorized"

	// KindProtocol indicates a non-success HTTP status, a JSON-RPC error,
	// a malformed or mismatched response, or a tool-level error result.
	KindProtocol Kind = "protocol_error"

	// KindUnreachable indicates the server could not be reached (DNS, connection refused, reset).
	KindUnreachable Kind = "unreachable"

	// KindCanceled indicates the caller canceled the request.
	KindCanceled Kind = "canceled"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is returned by the Client for every failed attempt.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Status is the HTTP status code, zero when no response was received.
	Status int

	// Code is the JSON-RPC error code, zero when the server did not return an error object.
	Code int

	// Message is a human-readable description of the failure.
	Message string

	// ToolError is true when the server answered the call but reported an error,
	// either as a JSON-RPC error object or as a result with isError set.
	ToolError bool

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s: rpc error %d: %s", e.Kind, e.Code, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: http status %d: %s", e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// FailureKind maps the transport kind onto the shared failure taxonomy.
func (e *Error) FailureKind() domain.FailureKind {
	switch e.Kind {
	case KindTimeout:
		return domain.FailureTimeout
	case KindUnauthorized:
		return domain.FailureUnauthorized
	case KindUnreachable:
		return domain.FailureUnreachable
	case KindCanceled:
		return domain.FailureCanceled
	default:
		return domain.FailureProtocol
	}
}

// AsError extracts a transport *Error from err.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
