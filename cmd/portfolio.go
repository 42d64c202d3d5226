package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	internalcmd "github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/gateway"
	"github.com/mozilla-ai/fingate/internal/portfolio"
	"github.com/mozilla-ai/fingate/internal/printer"
)

type PortfolioCmd struct {
	*internalcmd.BaseCmd
	Server           string
	Format           internalcmd.OutputFormat
	cfgLoader        config.Loader
	lookupEnv        config.LookupEnvFunc
	portfolioPrinter output.Printer[portfolio.Analysis]
}

func NewPortfolioCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &PortfolioCmd{
		BaseCmd:          baseCmd,
		Format:           internalcmd.FormatText, // Default to plain text
		cfgLoader:        opts.ConfigLoader,
		lookupEnv:        opts.LookupEnv,
		portfolioPrinter: &printer.PortfolioPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "portfolio SYMBOL=SHARES...",
		Short: "Analyzes a portfolio using current market prices",
		Long: "Analyzes a portfolio of holdings such as 'INFY=10 NSE:TCS=5', reporting value, " +
			"gain or loss, diversification and concentration risk.\n\n" +
			"When the market data server cannot be reached the analysis uses synthetic prices and says so",
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}

	cobraCmd.Flags().StringVar(&c.Server, "server", portfolio.DefaultServerID, "Market data server queried for prices")

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

func (c *PortfolioCmd) run(cmd *cobra.Command, args []string) error {
	handler, err := internalcmd.NewOutputHandler(c.Format, cmd.OutOrStdout(), c.portfolioPrinter)
	if err != nil {
		return err
	}

	holdings, err := portfolio.ParseHoldings(args)
	if err != nil {
		return handler.HandleError(err)
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

	analysis, err := portfolio.Analyze(cmd.Context(), sys.Gateway, holdings, portfolio.WithServer(c.Server))
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(analysis)
}
