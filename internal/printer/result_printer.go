package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mozilla-ai/fingate/internal/api"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
)

var _ output.Printer[api.ToolResult] = (*ToolResultPrinter)(nil)

// ToolResultPrinter prints the outcome of a tool call followed by its indented payload.
type ToolResultPrinter struct {
	headerFooter[api.ToolResult]
}

func (p *ToolResultPrinter) SetHeader(fn output.WriteFunc[api.ToolResult]) {
	p.headerFunc = fn
}

func (p *ToolResultPrinter) SetFooter(fn output.WriteFunc[api.ToolResult]) {
	p.footerFunc = fn
}

func (p *ToolResultPrinter) Item(w io.Writer, r api.ToolResult) error {
	target := r.Server + "/" + r.Tool

	switch r.Kind {
	case "success":
		_, _ = green.Fprint(w, "✅ success")
		_, _ = fmt.Fprintf(w, "  %s  (%s, %d %s)\n", target, r.Latency, r.Attempts, plural(r.Attempts, "attempt"))
	case "fallback":
		_, _ = yellow.Fprint(w, "⚠️  fallback")
		_, _ = fmt.Fprintf(w, "  %s  (synthetic data, reason: %s)\n", target, r.Reason)
	default:
		_, _ = red.Fprint(w, "❌ failure")
		_, _ = fmt.Fprintf(w, "  %s  (%s after %d %s)\n", target, r.FailureKind, r.Attempts, plural(r.Attempts, "attempt"))
	}

	if r.Message != "" {
		_, _ = faint.Fprintf(w, "  %s\n", r.Message)
	}

	if r.Payload == nil {
		return nil
	}

	data, err := json.MarshalIndent(r.Payload, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to format payload: %w", err)
	}
	_, _ = fmt.Fprintf(w, "  %s\n", data)

	return nil
}
