package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/fingate/internal/contracts"
	"github.com/mozilla-ai/fingate/internal/portfolio"
)

// PortfolioAnalyzeRequest represents the incoming API request to analyze a portfolio.
type PortfolioAnalyzeRequest struct {
	Body struct {
		Holdings []portfolio.Holding `doc:"Positions to analyze"                         json:"holdings" minItems:"1"`
		Server   string              `doc:"Market data server to price the holdings with" json:"server,omitempty" required:"false"`
	}
}

// PortfolioAnalyzeResponse is the response for POST /portfolio/analyze.
type PortfolioAnalyzeResponse struct {
	Body portfolio.Analysis
}

// RegisterPortfolioRoutes sets up portfolio analysis endpoints.
func RegisterPortfolioRoutes(routerAPI huma.API, gateway contracts.Gateway, apiPathPrefix string) {
	portfolioAPI := huma.NewGroup(routerAPI, apiPathPrefix)

	huma.Register(
		portfolioAPI,
		huma.Operation{
			OperationID: "analyzePortfolio",
			Method:      http.MethodPost,
			Path:        "/analyze",
			Summary:     "Analyze a portfolio",
			Description: "Prices every holding with a single quotes call and reports gain/loss and concentration risk",
			Tags:        []string{"Portfolio"},
		},
		func(ctx context.Context, input *PortfolioAnalyzeRequest) (*PortfolioAnalyzeResponse, error) {
			return handleAnalyzePortfolio(ctx, gateway, input.Body.Holdings, input.Body.Server)
		},
	)
}

func handleAnalyzePortfolio(
	ctx context.Context,
	gateway contracts.Gateway,
	holdings []portfolio.Holding,
	server string,
) (*PortfolioAnalyzeResponse, error) {
	var opts []portfolio.Option
	if server != "" {
		opts = append(opts, portfolio.WithServer(server))
	}

	analysis, err := portfolio.Analyze(ctx, gateway, holdings, opts...)
	if err != nil {
		return nil, err
	}

	return &PortfolioAnalyzeResponse{Body: analysis}, nil
}
