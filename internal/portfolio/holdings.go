package portfolio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mozilla-ai/fingate/internal/errors"
)

// NewHoldings pairs symbols with share counts. Both slices must be the same length.
func NewHoldings(symbols []string, shares []int) ([]Holding, error) {
	if len(symbols) != len(shares) {
		return nil, fmt.Errorf(
			"%w: number of symbols (%d) must match number of share counts (%d)",
			errors.ErrBadRequest,
			len(symbols),
			len(shares),
		)
	}

	holdings := make([]Holding, 0, len(symbols))
	for i := range symbols {
		holdings = append(holdings, Holding{Symbol: symbols[i], Shares: shares[i]})
	}

	return holdings, validate(holdings)
}

// ParseHoldings parses "SYMBOL=SHARES" pairs, e.g. 'INFY=10' or 'NSE:TCS=5'.
func ParseHoldings(pairs []string) ([]Holding, error) {
	holdings := make([]Holding, 0, len(pairs))
	for _, pair := range pairs {
		symbol, count, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: holding must be in the form SYMBOL=SHARES: '%s'", errors.ErrBadRequest, pair)
		}

		shares, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid share count for '%s': %w", errors.ErrBadRequest, symbol, err)
		}

		holdings = append(holdings, Holding{Symbol: strings.TrimSpace(symbol), Shares: shares})
	}

	return holdings, validate(holdings)
}

func validate(holdings []Holding) error {
	if len(holdings) == 0 {
		return fmt.Errorf("%w: at least one holding is required", errors.ErrBadRequest)
	}

	for _, h := range holdings {
		if strings.TrimSpace(h.Symbol) == "" {
			return fmt.Errorf("%w: holding symbol cannot be empty", errors.ErrBadRequest)
		}
		if h.Shares <= 0 {
			return fmt.Errorf("%w: share count for '%s' must be positive, got %d", errors.ErrBadRequest, h.Symbol, h.Shares)
		}
	}

	return nil
}
