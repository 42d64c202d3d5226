package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/cmd"
	cmdopts "github.com/mozilla-ai/fingate/internal/cmd/options"
	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/flags"
)

// InitCmd writes the skeleton configuration and reports which credentials it expects.
type InitCmd struct {
	*cmd.BaseCmd
	cfgInitializer config.Initializer
	cfgLoader      config.Loader
	lookupEnv      config.LookupEnvFunc
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: opts.ConfigInitializer,
		cfgLoader:      opts.ConfigLoader,
		lookupEnv:      opts.LookupEnv,
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Creates a gateway configuration file",
		Long: fmt.Sprintf(
			"Creates a %s configuration file listing a market-data and a payments server, "+
				"then lists the credential environment variables each server reads.\n\n"+
				"The configuration file path can be overridden using the `--%s` flag or the `%s` environment variable",
			flags.DefaultConfigFile,
			flags.FlagNameConfigFile,
			flags.EnvVarConfigFile,
		),
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	return cobraCommand, nil
}

func (c *InitCmd) run(cmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	path, err := initPath()
	if err != nil {
		logger.Error("Failed to resolve config file path", "error", err)
		return err
	}

	if err := c.cfgInitializer.Init(path); err != nil {
		logger.Error("Configuration initialization failed", "path", path, "error", err)
		return fmt.Errorf("error initializing configuration: %w", err)
	}
	logger.Info("Created configuration", "path", path)

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "✅ Config file created: %s\n", path); err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(path)
	if err != nil {
		return fmt.Errorf("error reading created configuration: %w", err)
	}

	return c.printServers(out, cfg.Servers)
}

// printServers lists each configured server with the credential variable it reads and whether it is set.
func (c *InitCmd) printServers(w io.Writer, servers []config.ServerEntry) error {
	if _, err := fmt.Fprintf(w, "\nServers (%d):\n", len(servers)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	var missing []string
	for _, srv := range servers {
		credential := color.New(color.Faint).Sprint("none")
		if name := strings.TrimSpace(srv.CredentialEnv); name != "" {
			state := color.GreenString("set")
			if v, ok := c.lookupEnv(name); !ok || strings.TrimSpace(v) == "" {
				state = color.YellowString("not set")
				missing = append(missing, name)
			}
			credential = fmt.Sprintf("$%s (%s)", name, state)
		}
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", srv.ID, srv.URL, credential); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	next := "\nRun 'fingate status --probe' to check the servers.\n"
	if len(missing) > 0 {
		next = fmt.Sprintf(
			"\nExport %s, then run 'fingate status --probe'. Servers without credentials answer with demo data.\n",
			strings.Join(missing, ", "),
		)
	}
	_, err := fmt.Fprint(w, next)

	return err
}

// initPath resolves where init writes; the default file name is created in the working directory.
func initPath() (string, error) {
	if flags.ConfigFile != flags.DefaultConfigFile {
		return flags.ConfigFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current directory: %w", err)
	}

	return filepath.Join(cwd, flags.DefaultConfigFile), nil
}
