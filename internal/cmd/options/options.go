package options

import (
	"os"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/registry"
)

type CmdOption func(*CmdOptions) error

// CmdOptions contains the collaborators shared by commands, overridable for testing.
type CmdOptions struct {
	ConfigLoader      config.Loader
	ConfigInitializer config.Initializer
	LookupEnv         config.LookupEnvFunc
}

func defaultOptions() CmdOptions {
	configLoader := &config.DefaultLoader{}
	return CmdOptions{
		ConfigLoader:      config.NewValidatingLoader(configLoader, registry.ToolNamesPredicate()),
		ConfigInitializer: configLoader,
		LookupEnv:         os.LookupEnv,
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		o.ConfigLoader = l
		return nil
	}
}

func WithConfigInitializer(i config.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		o.ConfigInitializer = i
		return nil
	}
}

// WithLookupEnv overrides how credential environment variables are resolved.
func WithLookupEnv(fn config.LookupEnvFunc) CmdOption {
	return func(o *CmdOptions) error {
		o.LookupEnv = fn
		return nil
	}
}
