package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/api"
	internalcmd "github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/errors"
	"github.com/mozilla-ai/fingate/internal/gateway"
	"github.com/mozilla-ai/fingate/internal/printer"
)

const (
	flagArg      = "arg"
	flagArgsJSON = "args-json"
)

type CallCmd struct {
	*internalcmd.BaseCmd
	Args          []string
	ArgsJSON      string
	Format        internalcmd.OutputFormat
	cfgLoader     config.Loader
	lookupEnv     config.LookupEnvFunc
	resultPrinter output.Printer[api.ToolResult]
}

func NewCallCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CallCmd{
		BaseCmd:       baseCmd,
		Format:        internalcmd.FormatText, // Default to plain text
		cfgLoader:     opts.ConfigLoader,
		lookupEnv:     opts.LookupEnv,
		resultPrinter: &printer.ToolResultPrinter{},
	}

	cobraCmd := &cobra.Command{
		Use:   "call <server-id> <tool> [--arg key=value]... | [--args-json '{...}']",
		Short: "Invokes a tool on an MCP server through the gateway",
		Long: "Invokes a tool on an MCP server through the gateway. Transient failures are retried, " +
			"and a server that cannot answer is replaced by fallback data which is labelled as such.\n\n" +
			"Argument values given with --arg are decoded as JSON when possible, e.g. " +
			"--arg instruments='[\"NSE:INFY\"]', and are otherwise taken as strings",
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	cobraCmd.Flags().StringArrayVar(&c.Args, flagArg, nil, "Tool argument in the form key=value, may be repeated")
	cobraCmd.Flags().StringVar(&c.ArgsJSON, flagArgsJSON, "", "Tool arguments as a JSON object")
	cobraCmd.MarkFlagsMutuallyExclusive(flagArg, flagArgsJSON)

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

func (c *CallCmd) run(cmd *cobra.Command, args []string) error {
	handler, err := internalcmd.NewOutputHandler(c.Format, cmd.OutOrStdout(), c.resultPrinter)
	if err != nil {
		return err
	}

	serverID := strings.TrimSpace(args[0])
	toolName := strings.TrimSpace(args[1])

	toolArgs, err := c.toolArguments()
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

	result := sys.Gateway.Invoke(cmd.Context(), serverID, toolName, toolArgs)

	apiResult, err := api.DomainToolResult(result).ToAPIType()
	if err != nil {
		return handler.HandleError(err)
	}

	if err := handler.HandleResult(apiResult); err != nil {
		return err
	}

	if result.IsFailure() {
		return fmt.Errorf("%w: %s on %s failed with %s", errors.ErrToolCallFailed, toolName, serverID, result.FailureKind)
	}

	return nil
}

// toolArguments builds the argument object from either --args-json or the repeated --arg flags.
func (c *CallCmd) toolArguments() (map[string]any, error) {
	if s := strings.TrimSpace(c.ArgsJSON); s != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, fmt.Errorf("%w: --%s must be a JSON object: %w", errors.ErrInvalidArguments, flagArgsJSON, err)
		}
		return obj, nil
	}

	return parseArgs(c.Args)
}

func parseArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: argument must be in the form key=value: '%s'", errors.ErrInvalidArguments, pair)
		}
		if _, exists := out[key]; exists {
			return nil, fmt.Errorf("%w: duplicate argument '%s'", errors.ErrInvalidArguments, key)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		out[key] = decoded
	}

	return out, nil
}
