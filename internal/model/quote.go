package model

import "time"

// Quote is the market data for one symbol from a single refresh cycle.
// Optional ratios are nil when the provider did not report them.
type Quote struct {
	Symbol         string    `json:"symbol"`
	Price          float64   `json:"price"`
	ChangePercent  float64   `json:"changePercent"`
	PriceEarnings  *float64  `json:"priceEarnings,omitempty"`
	PriceToBook    *float64  `json:"priceToBook,omitempty"`
	DividendYield  *float64  `json:"dividendYield,omitempty"`
	ReturnOnEquity *float64  `json:"returnOnEquity,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	AsOf           time.Time `json:"asOf"`
}

// PricePoint is one close of a historical series.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}
