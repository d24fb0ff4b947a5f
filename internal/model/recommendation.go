package model

import "time"

// Tier is the recommendation bucket assigned by the valuation engine.
type Tier string

const (
	StrongBuy Tier = "STRONG_BUY"
	BuyTier   Tier = "BUY"
	Hold      Tier = "HOLD"
	Caution   Tier = "CAUTION"
)

// Fundamentals are the ratios a recommendation was computed from.
type Fundamentals struct {
	PriceEarnings  *float64 `json:"priceEarnings,omitempty"`
	PriceToBook    *float64 `json:"priceToBook,omitempty"`
	DividendYield  *float64 `json:"dividendYield,omitempty"`
	ReturnOnEquity *float64 `json:"returnOnEquity,omitempty"`
}

// Recommendation is the derived valuation of one position. It is recomputed
// on every analysis run and never stored.
type Recommendation struct {
	Ticker                string       `json:"ticker"`
	AssetClass            AssetClass   `json:"assetClass"`
	CurrentPrice          float64      `json:"currentPrice"`
	FairValue             float64      `json:"fairValue"`
	CeilingPrice          float64      `json:"ceilingPrice"`
	MarginOfSafetyPercent float64      `json:"marginOfSafetyPercent"`
	CostBasisGapPercent   float64      `json:"costBasisGapPercent"`
	QualityScore          float64      `json:"qualityScore"`
	Tier                  Tier         `json:"tier"`
	Justification         string       `json:"justification"`
	Note                  string       `json:"note"`
	Fundamentals          Fundamentals `json:"fundamentals"`
}

// ProjectionPoint is one projected price.
type ProjectionPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Projection is the illustrative 90-day price path for one position. It is a
// decision-support heuristic, not a forecast.
type Projection struct {
	Ticker          string            `json:"ticker"`
	LastPrice       float64           `json:"lastPrice"`
	FairValue       float64           `json:"fairValue"`
	QualityScore    float64           `json:"qualityScore"`
	QuarterlyReturn float64           `json:"quarterlyReturn"`
	DailyRate       float64           `json:"dailyRate"`
	History         []PricePoint      `json:"history"`
	HistoryError    string            `json:"historyError,omitempty"`
	Points          []ProjectionPoint `json:"points"`
	Disclaimer      string            `json:"disclaimer"`
}
