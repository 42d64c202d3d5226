package fallback

import (
	"hash/fnv"
	"math"
	"strings"
)

// Quote is a reference market snapshot for one symbol.
type Quote struct {
	Symbol        string
	LastPrice     float64
	Change        float64
	ChangePercent float64
	Volume        int64
}

// knownQuotes holds reference snapshots for commonly requested symbols.
var knownQuotes = map[string]Quote{
	"RELIANCE":  {"RELIANCE", 2847.65, 12.30, 0.43, 45678901},
	"HDFCBANK":  {"HDFCBANK", 1678.90, 8.45, 0.51, 23456789},
	"TCS":       {"TCS", 3234.50, 15.25, 0.47, 12345678},
	"INFY":      {"INFY", 1456.80, 9.60, 0.66, 34567890},
	"ICICIBANK": {"ICICIBANK", 1123.45, 5.70, 0.51, 18765432},
	"SBIN":      {"SBIN", 678.90, 3.20, 0.47, 45678901},
	"WIPRO":     {"WIPRO", 567.80, 2.40, 0.42, 15432109},
	"NIFTY50":   {"NIFTY50", 24641.80, 120.55, 0.49, 1234567890},
	"AAPL":      {"AAPL", 182.52, 1.25, 0.69, 52341023},
	"GOOGL":     {"GOOGL", 142.85, -0.63, -0.44, 28156789},
	"MSFT":      {"MSFT", 378.91, 2.15, 0.57, 31245678},
	"TSLA":      {"TSLA", 248.42, 3.18, 1.30, 67890123},
	"AMZN":      {"AMZN", 174.33, 0.87, 0.50, 39876543},
	"NVDA":      {"NVDA", 131.26, 2.45, 1.90, 89123456},
}

// aliases maps company names and alternate tickers onto known symbols.
var aliases = map[string]string{
	"HDFC":      "HDFCBANK",
	"HDFC BANK": "HDFCBANK",
	"INFOSYS":   "INFY",
	"SBI":       "SBIN",
	"NIFTY":     "NIFTY50",
	"NIFTY 50":  "NIFTY50",
	"APPLE":     "AAPL",
	"GOOGLE":    "GOOGL",
	"MICROSOFT": "MSFT",
	"TESLA":     "TSLA",
	"AMAZON":    "AMZN",
	"NVIDIA":    "NVDA",
}

// Instrument splits "EXCHANGE:SYMBOL" into its parts, defaulting the exchange to NSE.
func Instrument(s string) (exchange string, symbol string) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if ex, sym, ok := strings.Cut(s, ":"); ok {
		return ex, sym
	}
	return "NSE", s
}

// Symbol returns the canonical symbol for a ticker or company name.
func Symbol(s string) string {
	_, sym := Instrument(s)
	if canonical, ok := aliases[sym]; ok {
		return canonical
	}
	return sym
}

// LookupQuote returns the reference snapshot for a symbol. Unknown symbols get a
// stable synthetic snapshot derived from an FNV hash of the symbol.
func LookupQuote(s string) Quote {
	sym := Symbol(s)
	if q, ok := knownQuotes[sym]; ok {
		return q
	}

	h := hash(sym)
	price := 1000 + float64(h%200000)/100
	change := float64(h%5000) / 100

	return Quote{
		Symbol:        sym,
		LastPrice:     price,
		Change:        change,
		ChangePercent: round2(change / price * 100),
		Volume:        int64(h % 100000000),
	}
}

// hash returns a stable FNV-1a hash of s.
func hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Fraction returns a stable value in [0,1) derived from s.
func Fraction(s string) float64 {
	return float64(hash(s)%10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsKnown reports whether the symbol has a reference snapshot.
func IsKnown(s string) bool {
	_, ok := knownQuotes[Symbol(s)]
	return ok
}
