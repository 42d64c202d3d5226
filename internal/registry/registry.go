// Package registry holds the closed, per-server catalog of tools the gateway may call.
package registry

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mozilla-ai/fingate/internal/config"
	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/errors"
)

const registryName = "registry"

var _ contracts.ToolCatalog = (*Registry)(nil)

// Registry maps each configured server to the tools it exposes and their compiled argument schemas.
type Registry struct {
	logger  hclog.Logger
	servers map[string]*serverTools
}

type serverTools struct {
	catalog string
	tools   []mcp.Tool
	schemas map[string]*gojsonschema.Schema
}

// New builds a Registry for the given servers.
// Each server resolves its catalog by name, then narrows it to its configured tool allow list.
func New(logger hclog.Logger, servers []config.ServerConfig, opts ...Option) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	o, err := getOpts(opts...)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		logger:  logger.Named(registryName),
		servers: make(map[string]*serverTools, len(servers)),
	}

	for _, srv := range servers {
		catalog, ok := o.catalogs[srv.Catalog]
		if !ok {
			return nil, fmt.Errorf("server '%s': unknown tool catalog '%s'", srv.ID, srv.Catalog)
		}

		tools, err := allowed(catalog, srv.Tools)
		if err != nil {
			return nil, fmt.Errorf("server '%s': %w", srv.ID, err)
		}

		st := &serverTools{
			catalog: srv.Catalog,
			tools:   tools,
			schemas: make(map[string]*gojsonschema.Schema, len(tools)),
		}
		for _, tool := range tools {
			schema, err := compile(tool)
			if err != nil {
				return nil, fmt.Errorf("server '%s': tool '%s': %w", srv.ID, tool.Name, err)
			}
			st.schemas[tool.Name] = schema
		}

		r.servers[srv.ID] = st
		r.logger.Debug("Registered tools", "server", srv.ID, "catalog", srv.Catalog, "tools", toolNames(tools))
	}

	return r, nil
}

// Tools returns the tools exposed by the given server.
func (r *Registry) Tools(serverID string) ([]mcp.Tool, error) {
	st, ok := r.servers[serverID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverID)
	}

	return slices.Clone(st.tools), nil
}

// ToolNames returns the names of the tools exposed by the given server.
func (r *Registry) ToolNames(serverID string) ([]string, error) {
	tools, err := r.Tools(serverID)
	if err != nil {
		return nil, err
	}

	return toolNames(tools), nil
}

// Validate checks the tool is registered for the server and that args satisfy its input schema.
func (r *Registry) Validate(serverID string, toolName string, args map[string]any) error {
	st, ok := r.servers[serverID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverID)
	}

	schema, ok := st.schemas[toolName]
	if !ok {
		return fmt.Errorf("%w: '%s' is not served by '%s'", errors.ErrToolNotFound, toolName, serverID)
	}

	if args == nil {
		args = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidArguments, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
		}
		return fmt.Errorf("%w: %s", errors.ErrInvalidArguments, strings.Join(problems, "; "))
	}

	return nil
}

// ToolNamesPredicate returns a config.ValidationPredicate which rejects configurations
// referencing catalogs or tools the gateway does not know about.
func ToolNamesPredicate(opts ...Option) config.ValidationPredicate {
	return func(cfg *config.Config) error {
		o, err := getOpts(opts...)
		if err != nil {
			return err
		}

		for _, entry := range cfg.Servers {
			catalog, ok := o.catalogs[entry.CatalogName()]
			if !ok {
				return config.NewErrInvalidValue(entry.ID+".catalog", entry.CatalogName())
			}
			if _, err := allowed(catalog, entry.Tools); err != nil {
				return fmt.Errorf("%w: server '%s': %w", config.ErrInvalidValue, entry.ID, err)
			}
		}

		return nil
	}
}

// allowed narrows catalog to the names in allowList, an empty allow list keeps every tool.
func allowed(catalog []mcp.Tool, allowList []string) ([]mcp.Tool, error) {
	if len(allowList) == 0 {
		return slices.Clone(catalog), nil
	}

	tools := make([]mcp.Tool, 0, len(allowList))
	for _, name := range allowList {
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(catalog, func(t mcp.Tool) bool { return t.Name == name })
		if idx < 0 {
			return nil, fmt.Errorf("%w: '%s'", errors.ErrToolNotFound, name)
		}
		tools = append(tools, catalog[idx])
	}

	return tools, nil
}

func compile(tool mcp.Tool) (*gojsonschema.Schema, error) {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile input schema: %w", err)
	}

	return schema, nil
}

func toolNames(tools []mcp.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}
