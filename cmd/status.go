package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/api"
	internalcmd "github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/gateway"
	"github.com/mozilla-ai/fingate/internal/printer"
)

type StatusCmd struct {
	*internalcmd.BaseCmd
	Probe         bool
	Format        internalcmd.OutputFormat
	cfgLoader     config.Loader
	lookupEnv     config.LookupEnvFunc
	statusPrinter output.Printer[api.DiagnosticsReport]
}

func NewStatusCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &StatusCmd{
		BaseCmd:       baseCmd,
		Format:        internalcmd.FormatText, // Default to plain text
		cfgLoader:     opts.ConfigLoader,
		lookupEnv:     opts.LookupEnv,
		statusPrinter: &printer.StatusPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "status [--probe]",
		Short: "Reports the health and configuration of every server",
		Long: "Reports the health and configuration of every configured server along with recommendations.\n\n" +
			"Without --probe no server is contacted and every enabled server reports as unknown",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cobraCmd.Flags().BoolVar(&c.Probe, "probe", false, "Probe every enabled server before reporting")

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

func (c *StatusCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.NewOutputHandler(c.Format, cmd.OutOrStdout(), c.statusPrinter)
	if err != nil {
		return err
	}

	logger, err := c.Logger()
	if err != nil {
		return handler.HandleError(err)
	}

	settings, err := c.LoadSettings(c.cfgLoader, c.lookupEnv)
	if err != nil {
		return handler.HandleError(err)
	}

	sys, err := gateway.Build(logger, settings)
	if err != nil {
		return handler.HandleError(fmt.Errorf("failed to build gateway: %w", err))
	}
	defer sys.Transport.CloseIdleConnections()

	if c.Probe {
		sys.Prober.ProbeAll(cmd.Context())
	}

	report, err := api.DomainDiagnosticsReport(sys.Gateway.Report()).ToAPIType()
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(report)
}
