// Package invoker calls tools on remote MCP servers, applying the retry state machine
// and normalizing every outcome into a domain.ToolResult.
package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/transport"
)

var _ contracts.ToolInvoker = (*Invoker)(nil)

// Invoker calls tools through an MCP transport.
type Invoker struct {
	logger    hclog.Logger
	transport contracts.MCPTransport
	catalog   contracts.ToolCatalog
	options   Options
}

// New creates an Invoker.
func New(
	logger hclog.Logger,
	t contracts.MCPTransport,
	catalog contracts.ToolCatalog,
	opts ...Option,
) (*Invoker, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if t == nil || reflect.ValueOf(t).IsNil() {
		return nil, fmt.Errorf("transport cannot be nil")
	}
	if catalog == nil || reflect.ValueOf(catalog).IsNil() {
		return nil, fmt.Errorf("tool catalog cannot be nil")
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Invoker{
		logger:    logger.Named("invoker"),
		transport: t,
		catalog:   catalog,
		options:   options,
	}, nil
}

// Call validates the request against the tool catalog, then sends it, retrying transient failures.
// A result rejected by the catalog is a protocol_error Failure with zero attempts.
func (i *Invoker) Call(ctx context.Context, cfg config.ServerConfig, toolName string, args map[string]any) domain.ToolResult {
	if err := i.catalog.Validate(cfg.ID, toolName, args); err != nil {
		i.logger.Warn("Rejected tool call", "server", cfg.ID, "tool", toolName, "error", err)
		return domain.Failure(cfg.ID, toolName, domain.FailureProtocol, err.Error())
	}

	for attempt := 0; ; attempt++ {
		requestID := i.transport.NewRequestID()
		start := time.Now()

		raw, err := i.transport.Send(ctx, cfg, requestID, toolName, args, cfg.Timeout)
		if err == nil {
			result := i.success(cfg, toolName, raw, time.Since(start))
			result.Attempts = attempt + 1
			return result
		}

		te := asTransportError(err)
		decision := DecideError(te, attempt, cfg.RetryCount)

		i.logger.Debug(
			"Tool call attempt failed",
			"server", cfg.ID,
			"tool", toolName,
			"attempt", attempt+1,
			"id", requestID,
			"decision", decision,
			"error", te,
		)

		if decision != DecisionRetry {
			result := domain.Failure(cfg.ID, toolName, te.FailureKind(), te.Error())
			result.Attempts = attempt + 1
			return result
		}

		delay := Backoff(i.options.InitialBackoff, i.options.MaxBackoff, i.options.Jitter, attempt, i.options.Random())
		if err := i.options.Sleep(ctx, delay); err != nil {
			kind := domain.FailureTimeout
			if errors.Is(err, context.Canceled) {
				kind = domain.FailureCanceled
			}
			result := domain.Failure(cfg.ID, toolName, kind, fmt.Sprintf("abandoned retry after %s: %v", te.Kind, err))
			result.Attempts = attempt + 1
			return result
		}
	}
}

func (i *Invoker) success(cfg config.ServerConfig, toolName string, raw json.RawMessage, latency time.Duration) domain.ToolResult {
	if !json.Valid(raw) {
		return domain.Failure(cfg.ID, toolName, domain.FailureProtocol, "server returned a result that is not valid JSON")
	}

	i.logger.Debug("Tool call succeeded", "server", cfg.ID, "tool", toolName, "latency", latency)

	return domain.Success(cfg.ID, toolName, raw, latency)
}

func asTransportError(err error) *transport.Error {
	if te, ok := transport.AsError(err); ok {
		return te
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &transport.Error{Kind: transport.KindCanceled, Message: err.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &transport.Error{Kind: transport.KindTimeout, Message: err.Error(), Err: err}
	default:
		return &transport.Error{Kind: transport.KindProtocol, Message: err.Error(), Err: err}
	}
}
