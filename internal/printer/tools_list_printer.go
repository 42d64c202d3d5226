package printer

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/fingate/internal/cmd/output"
)

var _ output.Printer[ToolsListResult] = (*ToolsListPrinter)(nil)

// ToolsListResult is the set of tools a server allows callers to invoke.
type ToolsListResult struct {
	Server  string   `json:"server"  yaml:"server"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Tools   []string `json:"tools"   yaml:"tools"`
	Count   int      `json:"count"   yaml:"count"`
}

type ToolsListPrinter struct {
	headerFooter[ToolsListResult]
}

func (p *ToolsListPrinter) SetHeader(fn output.WriteFunc[ToolsListResult]) {
	p.headerFunc = fn
}

func (p *ToolsListPrinter) SetFooter(fn output.WriteFunc[ToolsListResult]) {
	p.footerFunc = fn
}

func (p *ToolsListPrinter) Item(w io.Writer, result ToolsListResult) error {
	_, _ = fmt.Fprintf(w, "Tools for '%s' (%d total)", result.Server, result.Count)
	if !result.Enabled {
		_, _ = faint.Fprint(w, " demo mode")
	}
	_, _ = fmt.Fprintln(w, ":")

	if len(result.Tools) == 0 {
		_, _ = fmt.Fprintln(w, "  (No tools allowed)")
		return nil
	}

	// Registry returns tools in catalog order.
	for _, tool := range result.Tools {
		_, _ = fmt.Fprintf(w, "  %s\n", tool)
	}

	return nil
}
