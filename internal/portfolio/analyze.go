// Package portfolio values a set of holdings using quotes fetched through the gateway.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mozilla-ai/fingate/internal/domain"
	"github.com/mozilla-ai/fingate/internal/errors"
	"github.com/mozilla-ai/fingate/internal/fallback"
	"github.com/mozilla-ai/fingate/internal/registry"
)

// Invoker calls a tool on a configured server.
type Invoker interface {
	Invoke(ctx context.Context, serverID string, toolName string, args map[string]any) domain.ToolResult
}

// Analyze prices every holding with a single get_quotes call and computes
// gain/loss, weights and concentration metrics.
//
// Cost basis is not known to the gateway, so it is derived deterministically
// from the symbol as 92% to 108% of the current price.
func Analyze(ctx context.Context, inv Invoker, holdings []Holding, opts ...Option) (Analysis, error) {
	if inv == nil {
		return Analysis{}, fmt.Errorf("invoker cannot be nil")
	}
	if err := validate(holdings); err != nil {
		return Analysis{}, err
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return Analysis{}, err
	}

	instruments := make([]string, 0, len(holdings))
	for _, h := range holdings {
		key := instrumentKey(h.Symbol)
		if !slices.Contains(instruments, key) {
			instruments = append(instruments, key)
		}
	}

	result := inv.Invoke(ctx, options.ServerID, registry.ToolGetQuotes, map[string]any{"instruments": instruments})
	if !result.HasPayload() {
		return Analysis{}, fmt.Errorf("%w: %s: %s", errors.ErrToolCallFailed, result.FailureKind, result.Message)
	}

	quotes, err := decodeQuotes(result.Payload)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", errors.ErrToolCallFailed, err)
	}

	source := SourceLive
	analysis := Analysis{
		GeneratedAt: options.Clock().UTC(),
		Summary:     Summary{TotalHoldings: len(holdings)},
		Holdings:    make([]HoldingResult, 0, len(holdings)),
	}
	if result.IsFallback() {
		source = SourceSynthetic
		analysis.Summary.FallbackReason = string(result.Reason)
	}
	analysis.Summary.DataSources = []DataSource{source}

	var values []float64
	perf := &analysis.Performance
	for _, h := range holdings {
		key := instrumentKey(h.Symbol)
		hr := HoldingResult{Symbol: h.Symbol, Instrument: key, Shares: h.Shares}

		q, ok := quotes[key]
		if !ok || q.LastPrice <= 0 {
			hr.Error = "no price returned for " + key
			analysis.Holdings = append(analysis.Holdings, hr)
			continue
		}

		value := q.LastPrice * float64(h.Shares)
		costBasis := q.LastPrice * costBasisRatio(key)
		invested := costBasis * float64(h.Shares)

		hr.CurrentPrice = round2(q.LastPrice)
		hr.MarketValue = round2(value)
		hr.CostBasis = round2(costBasis)
		hr.GainLoss = round2(value - invested)
		hr.GainLossPercent = round2((value - invested) / invested * 100)
		hr.Volume = q.Volume
		hr.DataSource = source

		perf.TotalMarketValue += value
		perf.TotalInvested += invested
		perf.PricedPositions++
		values = append(values, value)

		analysis.Holdings = append(analysis.Holdings, hr)
	}

	if perf.PricedPositions == 0 {
		return Analysis{}, fmt.Errorf("%w: no holdings could be priced", errors.ErrToolCallFailed)
	}

	// Weights are relative to the final total, so assign them once every holding is priced.
	var hhi, largest float64
	i := 0
	for idx := range analysis.Holdings {
		if analysis.Holdings[idx].Error != "" {
			continue
		}
		w := values[i] / perf.TotalMarketValue
		analysis.Holdings[idx].Weight = round2(w * 100)
		hhi += w * w
		largest = math.Max(largest, w*100)
		i++
	}

	perf.TotalGainLoss = round2(perf.TotalMarketValue - perf.TotalInvested)
	perf.TotalReturnPercent = round2((perf.TotalMarketValue - perf.TotalInvested) / perf.TotalInvested * 100)
	perf.TotalMarketValue = round2(perf.TotalMarketValue)
	perf.TotalInvested = round2(perf.TotalInvested)
	perf.DiversificationScore = round2((1 - hhi) * 100)
	perf.LargestPositionWeight = round2(largest)

	analysis.Risk = assess(perf.DiversificationScore, perf.LargestPositionWeight)

	return analysis, nil
}

func assess(diversification float64, largestWeight float64) Risk {
	var r Risk

	switch {
	case largestWeight > 50:
		r.ConcentrationRisk = RiskHigh
	case largestWeight > 25:
		r.ConcentrationRisk = RiskMedium
	default:
		r.ConcentrationRisk = RiskLow
	}

	switch {
	case diversification > 80:
		r.DiversificationRating = RatingExcellent
	case diversification > 60:
		r.DiversificationRating = RatingGood
	default:
		r.DiversificationRating = RatingNeedsImprovement
	}

	if diversification > 70 {
		r.Recommendation = "Well diversified portfolio"
	} else {
		r.Recommendation = "Consider adding more positions to reduce concentration risk"
	}

	return r
}

// costBasisRatio returns a stable ratio in [0.92, 1.08] for the instrument.
func costBasisRatio(instrument string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(instrument))
	return 0.92 + float64(h.Sum64()%17)/100
}

// instrumentKey returns the "EXCHANGE:SYMBOL" key used to request and look up quotes.
func instrumentKey(s string) string {
	exchange, _ := fallback.Instrument(s)
	return exchange + ":" + fallback.Symbol(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// quote is the subset of a quote used for valuation.
type quote struct {
	LastPrice float64 `json:"last_price"`
	Volume    int64   `json:"volume"`
}

// decodeQuotes reads quotes from a tools/call result, preferring structuredContent
// over the first JSON text item.
func decodeQuotes(raw json.RawMessage) (map[string]quote, error) {
	result, err := mcp.ParseCallToolResult(&raw)
	if err != nil {
		return nil, fmt.Errorf("quotes payload is not a tool result: %w", err)
	}
	if result.IsError {
		return nil, fmt.Errorf("quotes tool reported an error: %s", firstText(result))
	}

	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("quotes structured content: %w", err)
		}
		return decodeQuoteMap(data)
	}

	text := firstText(result)
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("quotes tool result carries no JSON data")
	}

	return decodeQuoteMap(json.RawMessage(text))
}

func firstText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeQuoteMap accepts quotes keyed by instrument, optionally nested under "quotes" or "data".
func decodeQuoteMap(raw json.RawMessage) (map[string]quote, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("quotes payload is not an object: %w", err)
	}

	for _, nested := range []string{"quotes", "data"} {
		if inner, ok := fields[nested]; ok {
			return decodeQuoteMap(inner)
		}
	}

	quotes := make(map[string]quote, len(fields))
	for key, v := range fields {
		var q quote
		if err := json.Unmarshal(v, &q); err != nil {
			continue
		}
		quotes[key] = q
	}

	return quotes, nil
}
