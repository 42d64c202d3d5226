package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mozilla-ai/fingate/internal/api"
	"github.com/mozilla-ai/fingate/internal/cmd/output"
)

var _ output.Printer[api.DiagnosticsReport] = (*StatusPrinter)(nil)

// StatusPrinter prints a diagnostics report, one line per server coloured by health state.
type StatusPrinter struct {
	headerFooter[api.DiagnosticsReport]
}

func (p *StatusPrinter) SetHeader(fn output.WriteFunc[api.DiagnosticsReport]) {
	p.headerFunc = fn
}

func (p *StatusPrinter) SetFooter(fn output.WriteFunc[api.DiagnosticsReport]) {
	p.footerFunc = fn
}

func (p *StatusPrinter) Item(w io.Writer, report api.DiagnosticsReport) error {
	_, _ = bold.Fprintf(w, "Gateway status")
	_, _ = fmt.Fprintf(w, " (%s)\n\n", report.GeneratedAt.UTC().Format(time.RFC3339))

	width := 0
	for _, s := range report.Servers {
		width = max(width, len(s.Health.Server))
	}

	for _, s := range report.Servers {
		state := string(s.Health.State)
		stateColor := colorForState(s.Health.State)
		if !s.Enabled {
			state = "disabled"
			stateColor = faint
		}

		_, _ = fmt.Fprintf(w, "  %-*s  ", width, s.Health.Server)
		_, _ = stateColor.Fprintf(w, "%-11s", state)
		_, _ = fmt.Fprintf(w, "  %s", s.URL)

		var details []string
		if s.Health.Latency != nil {
			details = append(details, *s.Health.Latency)
		}
		if s.Health.ConsecutiveFailures > 0 {
			details = append(details, fmt.Sprintf("%d consecutive %s", s.Health.ConsecutiveFailures, plural(s.Health.ConsecutiveFailures, "failure")))
		}
		if !s.HasCredential {
			details = append(details, "no credential")
		}
		if len(details) > 0 {
			_, _ = faint.Fprintf(w, "  (%s)", strings.Join(details, ", "))
		}
		_, _ = fmt.Fprintln(w)

		if s.Health.LastError != "" {
			_, _ = fmt.Fprintf(w, "  %-*s  ", width, "")
			_, _ = red.Fprintf(w, "last error: %s\n", s.Health.LastError)
		}
	}

	sum := report.Summary
	_, _ = fmt.Fprintf(
		w,
		"\n%d %s: %d connected, %d degraded, %d unreachable, %d unknown, %d disabled\n",
		sum.Total, plural(sum.Total, "server"), sum.Connected, sum.Degraded, sum.Unreachable, sum.Unknown, sum.Disabled,
	)

	if len(report.Recommendations) > 0 {
		_, _ = cyan.Fprintln(w, "\nRecommendations:")
		for _, r := range report.Recommendations {
			_, _ = fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	return nil
}

func colorForState(state api.HealthState) *color.Color {
	switch state {
	case api.HealthStateConnected:
		return green
	case api.HealthStateDegraded:
		return yellow
	case api.HealthStateUnreachable:
		return red
	default:
		return faint
	}
}
