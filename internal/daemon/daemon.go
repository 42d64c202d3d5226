// Package daemon runs the gateway as a long-lived process: background health checks plus the HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// Daemon runs the health prober and API server until its context is canceled.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	apiServer *APIServer
	prober    HealthProber
	transport IdleCloser
	options   Options
}

// NewDaemon creates a Daemon from validated dependencies.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	apiDeps, err := NewAPIDependencies(deps.Logger, deps.Gateway, deps.APIAddr)
	if err != nil {
		return nil, err
	}

	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon API server: %w", err)
	}

	return &Daemon{
		logger:    deps.Logger.Named("daemon"),
		apiServer: apiServer,
		prober:    deps.Prober,
		transport: deps.Transport,
		options:   opts,
	}, nil
}

// StartAndManage probes every server once, then serves the API and runs background health checks.
// It blocks until ctx is canceled (a clean shutdown, returning nil) or a component fails.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	defer d.closeTransport()

	if d.options.StartupProbeTimeout > 0 {
		probeCtx, cancel := context.WithTimeout(ctx, d.options.StartupProbeTimeout)
		d.prober.ProbeAll(probeCtx)
		cancel()
	}

	g, gCtx := errgroup.WithContext(ctx)

	if d.options.HealthChecks {
		g.Go(func() error {
			d.logger.Info("Starting background health checks")
			return d.prober.Run(gCtx)
		})
	}

	g.Go(func() error {
		return d.apiServer.Start(gCtx)
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	d.logger.Info("Daemon stopped")
	return nil
}

func (d *Daemon) closeTransport() {
	if d.transport == nil {
		return
	}
	d.transport.CloseIdleConnections()
}
