// Package transport sends JSON-RPC 2.0 requests to remote MCP servers over HTTP.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/mozilla-ai/fingate/internal/config"
)

// maxErrorBody caps how much of a non-success response body is kept in error messages.
const maxErrorBody = 256

// Client sends tool calls and handshakes to remote MCP servers.
// A Client keeps one connection pool per server and is safe for concurrent use.
type Client struct {
	logger  hclog.Logger
	options Options

	mu    sync.Mutex
	pools map[string]*pool
}

// pool holds the per-server resources shared by every request to that server.
type pool struct {
	http    *http.Client
	slots   *semaphore.Weighted
	limiter *rate.Limiter
	size    int
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolResult is the subset of an MCP tools/call result inspected for tool-level errors.
type toolResult struct {
	IsError bool `json:"isError"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewClient creates a Client.
func NewClient(logger hclog.Logger, opts ...Option) (*Client, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger:  logger.Named("transport"),
		options: options,
		pools:   make(map[string]*pool),
	}, nil
}

// Send issues a single tools/call request to the server described by cfg.
// It returns the raw JSON-RPC result on success, otherwise a *Error.
// The timeout bounds the whole attempt, including waiting for a pooled connection slot.
func (c *Client) Send(
	ctx context.Context,
	cfg config.ServerConfig,
	requestID string,
	toolName string,
	args map[string]any,
	timeout time.Duration,
) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}

	params := mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	}

	result, err := c.do(ctx, cfg, requestID, string(mcp.MethodToolsCall), params, timeout)
	if err != nil {
		return nil, err
	}

	var tr toolResult
	if err := json.Unmarshal(result, &tr); err == nil && tr.IsError {
		return nil, &Error{
			Kind:      KindProtocol,
			Message:   toolErrorMessage(tr),
			ToolError: true,
		}
	}

	return result, nil
}

// Handshake sends an MCP initialize request and returns the raw result.
// Errors are classified exactly as they are for Send.
func (c *Client) Handshake(ctx context.Context, cfg config.ServerConfig, timeout time.Duration) (json.RawMessage, error) {
	params := mcp.InitializeParams{
		ProtocolVersion: c.options.ProtocolVersion,
		ClientInfo:      c.options.ClientInfo,
		Capabilities:    mcp.ClientCapabilities{},
	}

	return c.do(ctx, cfg, c.options.IDGenerator(), string(mcp.MethodInitialize), params, timeout)
}

// NewRequestID returns a fresh request identifier.
func (c *Client) NewRequestID() string {
	return c.options.IDGenerator()
}

// CloseIdleConnections closes idle pooled connections for every server.
func (c *Client) CloseIdleConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.pools {
		p.http.CloseIdleConnections()
	}
}

func (c *Client) do(
	ctx context.Context,
	cfg config.ServerConfig,
	requestID string,
	method string,
	params any,
	timeout time.Duration,
) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = cfg.Timeout
	}

	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p := c.poolFor(cfg)

	if err := p.slots.Acquire(attemptCtx, 1); err != nil {
		return nil, classifyContext(ctx, err, "waiting for connection slot")
	}
	defer p.slots.Release(1)

	if p.limiter != nil {
		if err := p.limiter.Wait(attemptCtx); err != nil {
			return nil, classifyContext(ctx, err, "waiting for rate limit")
		}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      requestID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, newError(KindProtocol, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindProtocol, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cfg.HasCredential() {
		req.Header.Set("Authorization", "Bearer "+cfg.Credential)
	}
	c.options.Propagator.Inject(attemptCtx, propagation.HeaderCarrier(req.Header))

	c.logger.Trace("Sending request", "server", cfg.ID, "method", method, "id", requestID)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, classifyDo(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.options.MaxResponseBytes))
	if err != nil {
		if attemptCtx.Err() != nil {
			return nil, classifyContext(ctx, err, "reading response")
		}
		return nil, newError(KindProtocol, "failed to read response", err)
	}

	return decodeResponse(resp.StatusCode, data, requestID)
}

func (c *Client) poolFor(cfg config.ServerConfig) *pool {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := max(cfg.PoolSize, 1)
	if p, ok := c.pools[cfg.ID]; ok && p.size == size {
		return p
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxConnsPerHost = size
	t.MaxIdleConnsPerHost = size

	p := &pool{
		http:  &http.Client{Transport: t},
		slots: semaphore.NewWeighted(int64(size)),
		size:  size,
	}
	if cfg.RateLimit > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}

	c.pools[cfg.ID] = p

	return p
}

func decodeResponse(status int, data []byte, requestID string) (json.RawMessage, error) {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, &Error{Kind: KindUnauthorized, Status: status, Message: snippet(data)}
	}

	var resp rpcResponse
	decodeErr := json.Unmarshal(data, &resp)

	if status < 200 || status > 299 {
		// Some servers send a well-formed JSON-RPC error with a 5xx status, it is still the tool's answer.
		if decodeErr == nil && resp.JSONRPC == mcp.JSONRPC_VERSION && resp.Error != nil {
			return nil, resp.Error.toError(status)
		}
		return nil, &Error{Kind: KindProtocol, Status: status, Message: snippet(data)}
	}

	if decodeErr != nil {
		return nil, &Error{Kind: KindProtocol, Status: status, Message: "malformed JSON-RPC response", Err: decodeErr}
	}

	if resp.JSONRPC != mcp.JSONRPC_VERSION {
		return nil, &Error{Kind: KindProtocol, Status: status, Message: fmt.Sprintf("unexpected jsonrpc version %q", resp.JSONRPC)}
	}

	var id string
	if err := json.Unmarshal(resp.ID, &id); err != nil || id != requestID {
		return nil, &Error{
			Kind:    KindProtocol,
			Status:  status,
			Message: fmt.Sprintf("response id %s does not match request id %q", string(resp.ID), requestID),
		}
	}

	if resp.Error != nil {
		return nil, resp.Error.toError(status)
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil, &Error{Kind: KindProtocol, Status: status, Message: "response has neither result nor error"}
	}

	return resp.Result, nil
}

func (e *rpcError) toError(status int) *Error {
	return &Error{
		Kind:      KindProtocol,
		Status:    status,
		Code:      e.Code,
		Message:   e.Message,
		ToolError: true,
	}
}

// classifyDo converts an error returned by http.Client.Do into a *Error.
func classifyDo(parent context.Context, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return classifyContext(parent, err, "request aborted")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, "request timed out", err)
	}

	return newError(KindUnreachable, "server unreachable", err)
}

// classifyContext distinguishes caller cancellation from an exceeded attempt deadline.
func classifyContext(parent context.Context, err error, msg string) *Error {
	if errors.Is(parent.Err(), context.Canceled) {
		return newError(KindCanceled, msg+": canceled by caller", err)
	}
	return newError(KindTimeout, msg+": deadline exceeded", err)
}

func toolErrorMessage(tr toolResult) string {
	var parts []string
	for _, c := range tr.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			parts = append(parts, strings.TrimSpace(c.Text))
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "; ")
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
