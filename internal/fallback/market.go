package fallback

import (
	"fmt"
	"math"
	"strings"
)

type marketQuote struct {
	Symbol           string  `json:"symbol"`
	LastPrice        float64 `json:"last_price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	Volume           int64   `json:"volume"`
	LatestTradingDay string  `json:"latest_trading_day"`
}

type lastPrice struct {
	LastPrice float64 `json:"last_price"`
}

type ohlcEntry struct {
	LastPrice float64 `json:"last_price"`
	OHLC      ohlc    `json:"ohlc"`
}

type ohlc struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

func (p *Provider) quotes(args map[string]any) (any, error) {
	instruments, err := instrumentsArg(args)
	if err != nil {
		return nil, err
	}

	out := make(map[string]marketQuote, len(instruments))
	for _, key := range instruments {
		q := LookupQuote(key)
		out[key] = marketQuote{
			Symbol:           q.Symbol,
			LastPrice:        q.LastPrice,
			Change:           q.Change,
			ChangePercent:    q.ChangePercent,
			Volume:           q.Volume,
			LatestTradingDay: p.epoch.Format("2006-01-02"),
		}
	}

	return map[string]any{"quotes": out}, nil
}

func (p *Provider) ltp(args map[string]any) (any, error) {
	instruments, err := instrumentsArg(args)
	if err != nil {
		return nil, err
	}

	out := make(map[string]lastPrice, len(instruments))
	for _, key := range instruments {
		out[key] = lastPrice{LastPrice: LookupQuote(key).LastPrice}
	}

	return map[string]any{"ltp": out}, nil
}

func (p *Provider) ohlc(args map[string]any) (any, error) {
	instruments, err := instrumentsArg(args)
	if err != nil {
		return nil, err
	}

	out := make(map[string]ohlcEntry, len(instruments))
	for _, key := range instruments {
		q := LookupQuote(key)
		prevClose := round2(q.LastPrice - q.Change)
		open := round2(prevClose * (1 + (Fraction(q.Symbol+":open")-0.5)/100))
		out[key] = ohlcEntry{
			LastPrice: q.LastPrice,
			OHLC: ohlc{
				Open:  open,
				High:  round2(math.Max(open, q.LastPrice) * 1.004),
				Low:   round2(math.Min(open, q.LastPrice) * 0.996),
				Close: prevClose,
			},
		}
	}

	return map[string]any{"ohlc": out}, nil
}

// instrumentsArg returns the normalized EXCHANGE:SYMBOL keys requested by args.
func instrumentsArg(args map[string]any) ([]string, error) {
	raw, ok := args["instruments"]
	if !ok {
		return nil, fmt.Errorf("missing 'instruments' argument")
	}

	var values []string
	switch v := raw.(type) {
	case []string:
		values = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("instrument must be a string, got %T", item)
			}
			values = append(values, s)
		}
	case string:
		values = []string{v}
	default:
		return nil, fmt.Errorf("'instruments' must be a list of strings, got %T", raw)
	}

	keys := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		exchange, symbol := Instrument(value)
		keys = append(keys, exchange+":"+symbol)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("'instruments' cannot be empty")
	}

	return keys, nil
}
