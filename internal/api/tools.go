package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// queryParamDetail is the name of the query parameter for detail level selection.
	queryParamDetail = "detail"

	// detailFull returns all fields including schemas and annotations.
	detailFull detailLevel = "full"

	// detailMinimal returns only name and title.
	detailMinimal detailLevel = "minimal"

	// detailSummary returns name, title, and description.
	detailSummary detailLevel = "summary"
)

// detailLevel defines the amount of information to return about tools and diagnostics.
type detailLevel string

// ToolView is a union constraint for all tool view types.
// This ensures type safety when using generic ToolsResponse.
type ToolView interface {
	ToolMinimal | ToolSummary | Tool
}

// ToolsResponseBody represents the body of a tools response.
type ToolsResponseBody[T ToolView] struct {
	Tools []T `json:"tools"`
}

// ToolsResponse represents a generic wrapped API response for tool collections.
// The type parameter T must be one of the ToolView types (ToolMinimal, ToolSummary, or Tool).
type ToolsResponse[T ToolView] struct {
	Body ToolsResponseBody[T]
}

// ToolMinimal represents minimal tool information with name and title only.
type ToolMinimal struct {
	// Name of the tool.
	Name string `doc:"Name of the tool" json:"name"`

	// Title is a human-readable title for the tool.
	Title string `doc:"Human-readable title" json:"title,omitempty"`
}

// ToolSummary represents summary tool information including name, title, and description.
type ToolSummary struct {
	ToolMinimal

	// Description is a human-readable description of the tool, used by agents to decide when to call it.
	Description string `doc:"Description of what the tool does" json:"description"`
}

// Tool represents complete tool information including its argument schema and annotations.
type Tool struct {
	ToolSummary

	// InputSchema is JSONSchema defining the expected arguments for the tool.
	InputSchema *JSONSchema `doc:"Input parameters schema" json:"inputSchema,omitempty"`

	// Annotations provide optional additional tool information.
	Annotations *ToolAnnotations `doc:"Additional hints about the tool" json:"annotations,omitempty"`
}

// JSONSchema defines the structure for a JSON schema object.
type JSONSchema struct {
	// Type defines the type for this schema, e.g. "object".
	Type string `json:"type"`

	// Properties represents a property name and associated object definition.
	Properties map[string]any `json:"properties,omitempty"`

	// Required lists the (keys of) Properties that are required.
	Required []string `json:"required,omitempty"`
}

// ToolAnnotations provides additional properties describing a Tool to clients.
// NOTE: all properties in ToolAnnotations are **hints**.
type ToolAnnotations struct {
	// Title is a human-readable title for the tool.
	Title *string `json:"title,omitempty"`

	// ReadOnlyHint if true, the tool should not modify its environment.
	ReadOnlyHint *bool `json:"readOnlyHint,omitempty"`

	// DestructiveHint if true, the tool may perform destructive updates to its environment.
	DestructiveHint *bool `json:"destructiveHint,omitempty"`

	// IdempotentHint if true, calling the tool repeatedly with the same arguments has no additional effect.
	IdempotentHint *bool `json:"idempotentHint,omitempty"`

	// OpenWorldHint if true, this tool may interact with an "open world" of external entities.
	OpenWorldHint *bool `json:"openWorldHint,omitempty"`
}

// domainTool wraps mcp.Tool for conversion to Tool via ToAPIType.
type domainTool mcp.Tool

// domainToolMinimal wraps Tool for projection to ToolMinimal via ToAPIType.
type domainToolMinimal Tool

// domainToolSummary wraps Tool for projection to ToolSummary via ToAPIType.
type domainToolSummary Tool

// Normalize handles case-insensitivity and trimming, providing a safe default.
func (t detailLevel) Normalize() detailLevel {
	normalized := detailLevel(strings.ToLower(strings.TrimSpace(string(t))))
	switch normalized {
	case detailMinimal, detailSummary, detailFull:
		return normalized
	default:
		return detailFull // Safe default.
	}
}

// ToAPIType converts a wrapped domain type to Tool.
func (d domainTool) ToAPIType() (Tool, error) {
	title := d.Annotations.Title

	inputSchema := &JSONSchema{
		Type:       d.InputSchema.Type,
		Properties: d.InputSchema.Properties,
		Required:   d.InputSchema.Required,
	}

	annotations := &ToolAnnotations{
		Title:           &d.Annotations.Title,
		ReadOnlyHint:    d.Annotations.ReadOnlyHint,
		DestructiveHint: d.Annotations.DestructiveHint,
		OpenWorldHint:   d.Annotations.OpenWorldHint,
		IdempotentHint:  d.Annotations.IdempotentHint,
	}

	// Nil the annotations if they're essentially zero value so they can be omitted in the result.
	if annotations.IsZero() {
		annotations = nil
	}

	return Tool{
		ToolSummary: ToolSummary{
			ToolMinimal: ToolMinimal{
				Name:  strings.ToLower(strings.TrimSpace(d.Name)),
				Title: title,
			},
			Description: d.Description,
		},
		InputSchema: inputSchema,
		Annotations: annotations,
	}, nil
}

// ToAPIType projects Tool to ToolMinimal.
func (t domainToolMinimal) ToAPIType() (ToolMinimal, error) {
	return ToolMinimal{
		Name:  t.Name,
		Title: t.Title,
	}, nil
}

// ToAPIType projects Tool to ToolSummary.
func (t domainToolSummary) ToAPIType() (ToolSummary, error) {
	minimal, err := domainToolMinimal(t).ToAPIType()
	if err != nil {
		return ToolSummary{}, err
	}

	return ToolSummary{
		ToolMinimal: minimal,
		Description: t.Description,
	}, nil
}

// IsZero reports whether the ToolAnnotations struct has no meaningful values set.
func (a *ToolAnnotations) IsZero() bool {
	if a == nil {
		return true
	}

	if a.Title != nil && *a.Title != "" {
		return false
	}

	if a.ReadOnlyHint != nil || a.DestructiveHint != nil || a.IdempotentHint != nil || a.OpenWorldHint != nil {
		return false
	}

	return true
}

// toolFieldSelectTransformer transforms tool responses based on the detail query parameter.
// It filters the response to return only the requested level of detail: minimal, summary, or full.
func toolFieldSelectTransformer(ctx huma.Context, _ string, v any) (any, error) {
	detailParam := ctx.Query(queryParamDetail)
	if detailParam == "" {
		detailParam = string(detailFull)
	}

	detail := detailLevel(detailParam).Normalize()
	if detail == detailFull {
		return v, nil
	}

	// Huma passes the Body field to transformers, not the full response.
	body, ok := v.(ToolsResponseBody[Tool])
	if !ok {
		return v, nil // Not our type, pass through.
	}

	switch detail {
	case detailMinimal:
		minimal, err := convertAll(body.Tools, func(t Tool) Convertible[ToolMinimal] { return domainToolMinimal(t) })
		if err != nil {
			return nil, err
		}
		return ToolsResponseBody[ToolMinimal]{Tools: minimal}, nil

	case detailSummary:
		summary, err := convertAll(body.Tools, func(t Tool) Convertible[ToolSummary] { return domainToolSummary(t) })
		if err != nil {
			return nil, err
		}
		return ToolsResponseBody[ToolSummary]{Tools: summary}, nil

	default:
		return v, nil
	}
}
