package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/flags"
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it.
func Execute() error {
	rootCmd, err := NewRootCmd(&cmd.BaseCmd{})
	if err != nil {
		return err
	}

	return rootCmd.ExecuteContext(context.Background())
}

// NewRootCmd creates the root command with every subcommand attached.
// Options are shared by all subcommands, tests use them to inject config loaders and environment lookups.
func NewRootCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	c := &RootCmd{BaseCmd: baseCmd}

	rootCmd := &cobra.Command{
		Use:           cmd.AppName() + " <command> [args]",
		Short:         fmt.Sprintf("'%s' is a resilient MCP gateway for financial agents.", cmd.AppName()),
		Long:          c.longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,
		NewDaemonCmd,
		NewStatusCmd,
		NewToolsCmd,
		NewCallCmd,
		NewPortfolioCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return fmt.Sprintf(`'%s' invokes tools on remote MCP servers for market data and payments.

Failed calls are retried, server health is tracked across calls, and when a server
cannot serve a request the gateway answers with clearly labelled synthetic data.`, cmd.AppName())
}
