package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/daemon"
	"github.com/mozilla-ai/fingate/internal/flags"
	"github.com/mozilla-ai/fingate/internal/gateway"
)

const (
	flagCORSEnable = "cors-enable"
	flagCORSOrigin = "cors-origin"
	devAddr        = "localhost:8090"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Dev            bool
	Addr           string
	CORSEnable     bool
	CORSOrigins    []string
	NoHealthChecks bool
	cfgLoader      config.Loader
	lookupEnv      config.LookupEnvFunc
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		lookupEnv: opts.LookupEnv,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Runs the gateway HTTP API with background health checks",
		Long: "Runs the gateway HTTP API. Every configured server is probed at startup and then " +
			"periodically in the background, tool calls are served over REST with fallback data " +
			"when a server cannot answer",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"0.0.0.0:8090",
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	cobraCommand.Flags().BoolVar(
		&c.CORSEnable,
		flagCORSEnable,
		false,
		"Enable CORS for the API",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		flagCORSOrigin,
		nil,
		"Origins allowed to call the API, may be repeated (requires --cors-enable)",
	)

	cobraCommand.Flags().BoolVar(
		&c.NoHealthChecks,
		"no-health-checks",
		false,
		"Disable background health checks, server health is then only updated by tool calls",
	)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	if err := c.RequireTogether(cobraCmd, flagCORSEnable, flagCORSOrigin); err != nil {
		return err
	}

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	settings, err := c.LoadSettings(c.cfgLoader, c.lookupEnv)
	if err != nil {
		return err
	}

	sys, err := gateway.Build(logger, settings)
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	deps, err := daemon.NewDependencies(logger, addr, sys.Gateway, sys.Prober, sys.Transport)
	if err != nil {
		return fmt.Errorf("invalid daemon dependencies: %w", err)
	}

	d, err := daemon.NewDaemon(deps, c.daemonOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		cobraCmd.Context(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer daemonCtxCancel()

	// Print --dev mode banner if required.
	if c.Dev {
		logger.Info("Launching daemon in dev mode", "addr", addr)
		banner := fmt.Sprintf("%s daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			cmd.AppName(), addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		_, _ = fmt.Fprint(cobraCmd.OutOrStdout(), banner)
	}

	if err := d.StartAndManage(daemonCtx); err != nil {
		logger.Error("Daemon exited with error", "error", err)
		return err
	}

	logger.Info("Daemon stopped")

	return nil
}

func (c *DaemonCmd) daemonOptions() []daemon.Option {
	apiOpts := []daemon.APIOption{daemon.WithCORSEnabled(c.CORSEnable)}
	if len(c.CORSOrigins) > 0 {
		apiOpts = append(apiOpts, daemon.WithCORSAllowOrigins(c.CORSOrigins))
	}

	return []daemon.Option{
		daemon.WithAPIOptions(apiOpts...),
		daemon.WithHealthChecks(!c.NoHealthChecks),
	}
}
