// Package errors defines domain-level errors used throughout the gateway.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrServerNotFound indicates that the requested MCP server is not configured.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrToolNotFound indicates that the requested tool is not part of the server's tool catalog.
	// Recommended to map to HTTP 404 Not Found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments indicates that the tool arguments do not satisfy the tool's argument schema.
	// Recommended to map to HTTP 400 Bad Request.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrHealthNotTracked indicates that health monitoring is not enabled for the specified server.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("server health is not being tracked")

	// ErrFallbackUnavailable indicates that no synthetic payload could be produced for a failed invocation.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrFallbackUnavailable = errors.New("fallback data unavailable")

	// ErrToolCallFailed indicates that calling a tool on a remote MCP server failed and no fallback was applied.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")
)
