package registry

import "github.com/mark3labs/mcp-go/mcp"

const (
	// CatalogMarketData is the catalog of a Kite-style market data server.
	CatalogMarketData = "market-data"

	// CatalogPayments is the catalog of a Stripe-style payments server.
	CatalogPayments = "payments"
)

// Tool names served by the built-in catalogs.
const (
	ToolGetQuotes     = "get_quotes"
	ToolGetLTP        = "get_ltp"
	ToolGetOHLC       = "get_ohlc"
	ToolListCharges   = "list_charges"
	ToolGetBalance    = "get_balance"
	ToolListCustomers = "list_customers"
)

// BuiltinCatalogs returns the tool catalogs known to the gateway, keyed by catalog name.
func BuiltinCatalogs() map[string][]mcp.Tool {
	return map[string][]mcp.Tool{
		CatalogMarketData: MarketDataTools(),
		CatalogPayments:   PaymentsTools(),
	}
}

// MarketDataTools returns the tools of the market data catalog.
func MarketDataTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolGetQuotes,
			mcp.WithDescription("Full market quotes for one or more instruments"),
			instrumentsArg(),
		),
		mcp.NewTool(ToolGetLTP,
			mcp.WithDescription("Last traded price for one or more instruments"),
			instrumentsArg(),
		),
		mcp.NewTool(ToolGetOHLC,
			mcp.WithDescription("Open, high, low and close for one or more instruments"),
			instrumentsArg(),
		),
	}
}

// PaymentsTools returns the tools of the payments catalog.
func PaymentsTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolListCharges,
			mcp.WithDescription("List recent charges"),
			limitArg(),
		),
		mcp.NewTool(ToolGetBalance,
			mcp.WithDescription("Retrieve the current account balance"),
		),
		mcp.NewTool(ToolListCustomers,
			mcp.WithDescription("List customers"),
			limitArg(),
		),
	}
}

func instrumentsArg() mcp.ToolOption {
	return mcp.WithArray("instruments",
		mcp.Required(),
		mcp.Description("Instruments in EXCHANGE:SYMBOL form, e.g. NSE:INFY"),
		mcp.Items(map[string]any{"type": "string", "minLength": 1}),
	)
}

func limitArg() mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description("Maximum number of objects to return"),
		mcp.Min(1),
		mcp.Max(100),
	)
}
