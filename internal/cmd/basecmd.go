package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/flags"
	"github.com/mozilla-ai/fingate/internal/perms"
)

const appName = "fingate"

var version = "dev" // Set at build time using -ldflags

// AppName returns the name of the application.
func AppName() string {
	return appName
}

// Version returns the build version of the application.
func Version() string {
	return version
}

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the logger for the command, creating it from the log flags on first use.
// Logs are discarded unless a log path is configured.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	logLevel := strings.ToLower(strings.TrimSpace(flags.LogLevel))
	if logLevel == "" {
		logLevel = flags.DefaultLogLevel
	}
	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level '%s', must be one of trace, debug, info, warn, error, off", logLevel)
	}

	var output io.Writer = io.Discard
	if logPath := strings.TrimSpace(flags.LogPath); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   appName,
		Level:  level,
		Output: output,
	})

	return c.logger, nil
}

// LoadSettings loads the configuration file named by the config file flag and resolves it into Settings.
func (c *BaseCmd) LoadSettings(loader config.Loader, lookup config.LookupEnvFunc) (config.Settings, error) {
	cfg, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return config.Settings{}, err
	}

	settings, err := cfg.Resolve(lookup)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to resolve configuration (%s): %w", cfg.Path(), err)
	}

	return settings, nil
}

// RequireTogether returns an error when only some of the named flags were set on the command.
func (c *BaseCmd) RequireTogether(cmd *cobra.Command, flagNames ...string) error {
	set := 0
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			set++
		}
	}

	if set == 0 || set == len(flagNames) {
		return nil
	}

	names := slices.Clone(flagNames)
	slices.Sort(names)

	return fmt.Errorf("flags must be provided together or not at all (%s)", strings.Join(names, ", "))
}
