package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mozilla-ai/fingate/internal/cmd/output"
	"github.com/mozilla-ai/fingate/internal/portfolio"
)

var _ output.Printer[portfolio.Analysis] = (*PortfolioPrinter)(nil)

// PortfolioPrinter prints a portfolio analysis as a holdings table followed by performance and risk.
type PortfolioPrinter struct {
	headerFooter[portfolio.Analysis]
}

func (p *PortfolioPrinter) SetHeader(fn output.WriteFunc[portfolio.Analysis]) {
	p.headerFunc = fn
}

func (p *PortfolioPrinter) SetFooter(fn output.WriteFunc[portfolio.Analysis]) {
	p.footerFunc = fn
}

func (p *PortfolioPrinter) Item(w io.Writer, a portfolio.Analysis) error {
	sources := make([]string, 0, len(a.Summary.DataSources))
	for _, s := range a.Summary.DataSources {
		sources = append(sources, string(s))
	}

	_, _ = bold.Fprintf(w, "Portfolio analysis")
	_, _ = fmt.Fprintf(w, " (%d %s, data: %s)\n", a.Summary.TotalHoldings, plural(a.Summary.TotalHoldings, "holding"), strings.Join(sources, ", "))
	if a.Summary.FallbackReason != "" {
		_, _ = yellow.Fprintf(w, "Prices are synthetic: %s\n", a.Summary.FallbackReason)
	}
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  SYMBOL\tSHARES\tPRICE\tVALUE\tGAIN/LOSS\tWEIGHT")
	_, _ = fmt.Fprintln(tw, "  ------\t------\t-----\t-----\t---------\t------")
	for _, h := range a.Holdings {
		if h.Error != "" {
			_, _ = fmt.Fprintf(tw, "  %s\t%d\t-\t-\t%s\t-\n", h.Symbol, h.Shares, h.Error)
			continue
		}
		_, _ = fmt.Fprintf(
			tw,
			"  %s\t%d\t%.2f\t%.2f\t%+.2f (%+.2f%%)\t%.2f%%\n",
			h.Symbol, h.Shares, h.CurrentPrice, h.MarketValue, h.GainLoss, h.GainLossPercent, h.Weight,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	perf := a.Performance
	_, _ = fmt.Fprintf(w, "\nMarket value:     %.2f\n", perf.TotalMarketValue)
	_, _ = fmt.Fprintf(w, "Invested:         %.2f\n", perf.TotalInvested)
	_, _ = fmt.Fprintf(w, "Total return:     %+.2f (%+.2f%%)\n", perf.TotalGainLoss, perf.TotalReturnPercent)
	_, _ = fmt.Fprintf(w, "Diversification:  %.2f (%s)\n", perf.DiversificationScore, a.Risk.DiversificationRating)

	riskColor := green
	switch a.Risk.ConcentrationRisk {
	case portfolio.RiskHigh:
		riskColor = red
	case portfolio.RiskMedium:
		riskColor = yellow
	}
	_, _ = fmt.Fprint(w, "Concentration:    ")
	_, _ = riskColor.Fprintf(w, "%s", a.Risk.ConcentrationRisk)
	_, _ = fmt.Fprintf(w, " (largest position %.2f%%)\n", perf.LargestPositionWeight)
	_, _ = cyan.Fprintf(w, "%s\n", a.Risk.Recommendation)

	return nil
}
