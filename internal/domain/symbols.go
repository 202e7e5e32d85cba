package domain

// TrackedSymbol is a company/ticker pair statically configured for monitoring.
// The list is immutable at runtime.
type TrackedSymbol struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
}

var TrackedSymbols = []TrackedSymbol{
	{Name: "JPMorgan Chase", Ticker: "JPM", Sector: "Financial Services", Industry: "Banks"},
	{Name: "Apple", Ticker: "AAPL", Sector: "Technology", Industry: "Consumer Electronics"},
	{Name: "Microsoft", Ticker: "MSFT", Sector: "Technology", Industry: "Software"},
	{Name: "Google", Ticker: "GOOGL", Sector: "Communication Services", Industry: "Internet Content"},
	{Name: "Tesla", Ticker: "TSLA", Sector: "Consumer Cyclical", Industry: "Auto Manufacturers"},
	{Name: "Amazon", Ticker: "AMZN", Sector: "Consumer Cyclical", Industry: "Internet Retail"},
	{Name: "Meta", Ticker: "META", Sector: "Communication Services", Industry: "Internet Content"},
	{Name: "Netflix", Ticker: "NFLX", Sector: "Communication Services", Industry: "Entertainment"},
}

// TrackedTickers returns tickers in configured order.
func TrackedTickers() []string {
	out := make([]string, 0, len(TrackedSymbols))
	for _, s := range TrackedSymbols {
		out = append(out, s.Ticker)
	}
	return out
}

// SymbolByTicker looks a ticker up in the tracked table.
func SymbolByTicker(ticker string) (TrackedSymbol, bool) {
	for _, s := range TrackedSymbols {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return TrackedSymbol{}, false
}

// IsValidTicker reports whether ticker is a well-formed symbol: non-empty,
// uppercase alphanumeric, at most five characters.
func IsValidTicker(ticker string) bool {
	if len(ticker) == 0 || len(ticker) > 5 {
		return false
	}
	for _, r := range ticker {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
