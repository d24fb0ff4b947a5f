package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend is an income payment linked to a position by ticker only.
// Removing the position does not remove its dividends.
type Dividend struct {
	ID          string          `json:"id"`
	Ticker      string          `json:"ticker"`
	Category    string          `json:"category"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	ExDate      time.Time       `json:"exDate"`
	PayDate     time.Time       `json:"payDate"`
}

// DividendImportRow is one row produced by the dividend import collaborator.
type DividendImportRow struct {
	Ticker      string    `json:"ticker"`
	Category    string    `json:"category"`
	GrossAmount RawAmount `json:"grossAmount"`
	NetAmount   RawAmount `json:"netAmount"`
	ExDate      string    `json:"exDate"`
	PayDate     string    `json:"payDate"`
}
