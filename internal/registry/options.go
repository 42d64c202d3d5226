package registry

import (
	"fmt"
	"maps"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Option configures a Registry.
type Option func(*options) error

type options struct {
	catalogs map[string][]mcp.Tool
}

// WithCatalog registers an additional named catalog, replacing any built-in catalog with the same name.
func WithCatalog(name string, tools ...mcp.Tool) Option {
	return func(o *options) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("catalog name cannot be empty")
		}
		if len(tools) == 0 {
			return fmt.Errorf("catalog '%s' must contain at least one tool", name)
		}
		o.catalogs[name] = tools
		return nil
	}
}

func getDefaultOptions() options {
	return options{
		catalogs: maps.Clone(BuiltinCatalogs()),
	}
}

func getOpts(opts ...Option) (options, error) {
	opt := getDefaultOptions()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(&opt); err != nil {
			return options{}, err
		}
	}
	return opt, nil
}
