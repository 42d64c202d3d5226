package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	internalcmd "github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/printer"
	"github.com/mozilla-ai/fingate/internal/registry"
)

type ToolsCmd struct {
	*internalcmd.BaseCmd
	cfgLoader    config.Loader
	lookupEnv    config.LookupEnvFunc
	Format       internalcmd.OutputFormat
	toolsPrinter output.Printer[printer.ToolsListResult]
}

func NewToolsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ToolsCmd{
		BaseCmd:      baseCmd,
		cfgLoader:    opts.ConfigLoader,
		lookupEnv:    opts.LookupEnv,
		Format:       internalcmd.FormatText, // Default to plain text
		toolsPrinter: &printer.ToolsListPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "tools [server-id]...",
		Short: "Lists the tools each server allows",
		Long:  "Lists the tools each configured server allows, or only those of the named servers",
		RunE:  c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

func (c *ToolsCmd) run(cmd *cobra.Command, args []string) error {
	handler, err := internalcmd.NewOutputHandler(c.Format, cmd.OutOrStdout(), c.toolsPrinter)
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

	reg, err := registry.New(logger, settings.Servers)
	if err != nil {
		return handler.HandleError(err)
	}

	ids := settings.ServerIDs()
	if len(args) > 0 {
		ids = make([]string, 0, len(args))
		for _, arg := range args {
			ids = append(ids, strings.TrimSpace(arg))
		}
	}

	results := make([]printer.ToolsListResult, 0, len(ids))
	for _, id := range ids {
		srv, ok := settings.Server(id)
		if !ok {
			return handler.HandleError(fmt.Errorf("server '%s' not found in configuration", id))
		}

		tools, err := reg.ToolNames(id)
		if err != nil {
			return handler.HandleError(err)
		}

		results = append(results, printer.ToolsListResult{
			Server:  id,
			Enabled: srv.Enabled,
			Tools:   tools,
			Count:   len(tools),
		})
	}

	return handler.HandleResults(results...)
}
