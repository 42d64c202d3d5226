package portfolio

import "time"

const (
	SourceLive      DataSource = "live"
	SourceSynthetic DataSource = "synthetic"
)

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// DataSource records where the prices used by an analysis came from.
type DataSource string

// RiskLevel classifies how concentrated a portfolio is in its largest position.
type RiskLevel string

// Rating classifies how well diversified a portfolio is.
type Rating string

// Holding is a position in a single instrument.
type Holding struct {
	// Symbol is a ticker, company name or "EXCHANGE:SYMBOL" instrument.
	Symbol string `json:"symbol" yaml:"symbol"`

	// Shares is the number of units held.
	Shares int `json:"shares" yaml:"shares"`
}

// Analysis is the result of analyzing a portfolio.
type Analysis struct {
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Summary     Summary         `json:"summary" yaml:"summary"`
	Holdings    []HoldingResult `json:"holdings" yaml:"holdings"`
	Performance Performance     `json:"performance" yaml:"performance"`
	Risk        Risk            `json:"risk" yaml:"risk"`
}

// Summary describes the inputs to an analysis.
type Summary struct {
	TotalHoldings int          `json:"totalHoldings" yaml:"totalHoldings"`
	DataSources   []DataSource `json:"dataSources" yaml:"dataSources"`

	// FallbackReason is set when synthetic prices were used.
	FallbackReason string `json:"fallbackReason,omitempty" yaml:"fallbackReason,omitempty"`
}

// HoldingResult is the valuation of one holding.
// When Error is set the holding could not be priced and is excluded from the totals.
type HoldingResult struct {
	Symbol          string     `json:"symbol" yaml:"symbol"`
	Instrument      string     `json:"instrument" yaml:"instrument"`
	Shares          int        `json:"shares" yaml:"shares"`
	CurrentPrice    float64    `json:"currentPrice,omitempty" yaml:"currentPrice,omitempty"`
	MarketValue     float64    `json:"marketValue,omitempty" yaml:"marketValue,omitempty"`
	CostBasis       float64    `json:"costBasis,omitempty" yaml:"costBasis,omitempty"`
	GainLoss        float64    `json:"gainLoss,omitempty" yaml:"gainLoss,omitempty"`
	GainLossPercent float64    `json:"gainLossPercent,omitempty" yaml:"gainLossPercent,omitempty"`
	Weight          float64    `json:"weight,omitempty" yaml:"weight,omitempty"`
	Volume          int64      `json:"volume,omitempty" yaml:"volume,omitempty"`
	DataSource      DataSource `json:"dataSource,omitempty" yaml:"dataSource,omitempty"`
	Error           string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Performance aggregates the priced holdings.
type Performance struct {
	TotalMarketValue      float64 `json:"totalMarketValue" yaml:"totalMarketValue"`
	TotalInvested         float64 `json:"totalInvested" yaml:"totalInvested"`
	TotalGainLoss         float64 `json:"totalGainLoss" yaml:"totalGainLoss"`
	TotalReturnPercent    float64 `json:"totalReturnPercent" yaml:"totalReturnPercent"`
	PricedPositions       int     `json:"pricedPositions" yaml:"pricedPositions"`
	DiversificationScore  float64 `json:"diversificationScore" yaml:"diversificationScore"`
	LargestPositionWeight float64 `json:"largestPositionWeight" yaml:"largestPositionWeight"`
}

// Risk summarizes concentration in the portfolio.
type Risk struct {
	ConcentrationRisk     RiskLevel `json:"concentrationRisk" yaml:"concentrationRisk"`
	DiversificationRating Rating    `json:"diversificationRating" yaml:"diversificationRating"`
	Recommendation        string    `json:"recommendation" yaml:"recommendation"`
}
