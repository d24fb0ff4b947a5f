package model

// AllocationSlice is the market value held in one asset class.
type AllocationSlice struct {
	AssetClass AssetClass `json:"assetClass"`
	Label      string     `json:"label"`
	Value      float64    `json:"value"`
	Percent    float64    `json:"percent"`
}

// Profitability is the total return of one position including dividends.
type Profitability struct {
	Ticker        string     `json:"ticker"`
	AssetClass    AssetClass `json:"assetClass"`
	Invested      float64    `json:"invested"`
	MarketValue   float64    `json:"marketValue"`
	Dividends     float64    `json:"dividends"`
	TotalGain     float64    `json:"totalGain"`
	ReturnPercent float64    `json:"returnPercent"`
}

// PortfolioSummary rolls every position up into portfolio totals.
type PortfolioSummary struct {
	TotalInvested              float64           `json:"totalInvested"`
	TotalMarketValue           float64           `json:"totalMarketValue"`
	TotalDividends             float64           `json:"totalDividends"`
	TotalProfit                float64           `json:"totalProfit"`
	ReturnPercent              float64           `json:"returnPercent"`
	ReturnWithDividendsPercent float64           `json:"returnWithDividendsPercent"`
	Allocation                 []AllocationSlice `json:"allocation"`
	Positions                  []Profitability   `json:"positions"`
}

// EvolutionPoint is the cumulative portfolio value at the end of a month.
type EvolutionPoint struct {
	Month string  `json:"month"` // YYYY-MM
	Value float64 `json:"value"`
}
