package health

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/transport"
)

// Prober periodically sends an MCP initialize handshake to every enabled server
// and records the outcome in a Monitor.
type Prober struct {
	logger    hclog.Logger
	monitor   contracts.MCPHealthMonitor
	transport contracts.MCPTransport
	servers   []config.ServerConfig
	options   ProberOptions
	busy      map[string]*atomic.Bool
}

// NewProber creates a Prober for the given servers. Disabled servers are never probed.
func NewProber(
	logger hclog.Logger,
	monitor contracts.MCPHealthMonitor,
	t contracts.MCPTransport,
	servers []config.ServerConfig,
	opts ...ProberOption,
) (*Prober, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if monitor == nil || reflect.ValueOf(monitor).IsNil() {
		return nil, fmt.Errorf("health monitor cannot be nil")
	}
	if t == nil || reflect.ValueOf(t).IsNil() {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	options, err := NewProberOptions(opts...)
	if err != nil {
		return nil, err
	}

	p := &Prober{
		logger:    logger.Named("health"),
		monitor:   monitor,
		transport: t,
		options:   options,
		busy:      make(map[string]*atomic.Bool, len(servers)),
	}

	for _, srv := range servers {
		if !srv.Enabled {
			continue
		}
		p.servers = append(p.servers, srv.Clone())
		p.busy[srv.ID] = &atomic.Bool{}
	}

	return p, nil
}

// Run probes every enabled server immediately and then on each interval, until ctx is done.
// Each server has its own loop, so a slow server never delays probes of the others.
func (p *Prober) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range p.servers {
		g.Go(func() error {
			p.loop(ctx, srv)
			return nil
		})
	}

	return g.Wait()
}

// ProbeAll probes every enabled server once, concurrently, and waits for all of them.
func (p *Prober) ProbeAll(ctx context.Context) {
	var g errgroup.Group

	for _, srv := range p.servers {
		g.Go(func() error {
			p.tryProbe(ctx, srv)
			return nil
		})
	}

	_ = g.Wait()
}

func (p *Prober) loop(ctx context.Context, srv config.ServerConfig) {
	ticker := time.NewTicker(p.options.Interval)
	defer ticker.Stop()

	var inflight errgroup.Group
	defer func() { _ = inflight.Wait() }()

	start := func() {
		inflight.Go(func() error {
			p.tryProbe(ctx, srv)
			return nil
		})
	}

	start()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping MCP server health checks", "server", srv.ID)
			return
		case <-ticker.C:
			start()
		}
	}
}

// tryProbe runs a probe unless the previous probe for the same server is still running.
// It reports whether a probe was run.
func (p *Prober) tryProbe(ctx context.Context, srv config.ServerConfig) bool {
	busy := p.busy[srv.ID]
	if !busy.CompareAndSwap(false, true) {
		p.logger.Debug("Skipping health check, previous check still running", "server", srv.ID)
		return false
	}
	defer busy.Store(false)

	p.probe(ctx, srv)

	return true
}

func (p *Prober) probe(ctx context.Context, srv config.ServerConfig) {
	start := time.Now()
	_, err := p.transport.Handshake(ctx, srv, p.options.Timeout)
	latency := time.Since(start)

	outcome := domain.Succeeded(latency)
	if err != nil {
		kind := domain.FailureProtocol
		if te, ok := transport.AsError(err); ok {
			kind = te.FailureKind()
		}
		if kind == domain.FailureCanceled || ctx.Err() != nil {
			// Shutting down, this says nothing about the server.
			return
		}
		outcome = domain.Failed(kind, err.Error())
	}

	h, err := p.monitor.Record(srv.ID, outcome)
	if err != nil {
		p.logger.Error("Failed to record health check", "server", srv.ID, "error", err)
		return
	}

	if outcome.Success {
		p.logger.Debug("Health check successful", "server", srv.ID, "latency", latency)
		return
	}

	p.logger.Warn(
		"Health check failed",
		"server", srv.ID,
		"state", h.State,
		"failures", h.ConsecutiveFailures,
		"error", outcome.Message,
	)
}
