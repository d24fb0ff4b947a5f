package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes purchases from sales.
type TransactionType string

const (
	Buy  TransactionType = "BUY"
	Sell TransactionType = "SELL"
)

// Transaction is an immutable buy or sell record owned by a position.
type Transaction struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     time.Time       `json:"date"`
}

// Cost returns quantity times price.
func (t Transaction) Cost() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// TransactionInput is a validated transaction before it receives an ID.
type TransactionInput struct {
	Type     TransactionType
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Date     time.Time
}

// RawAmount holds a numeric field exactly as supplied by an import, so that
// malformed values can be reported per row instead of failing the whole batch.
// It accepts both JSON numbers and JSON strings.
type RawAmount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	*a = RawAmount(data)
	return nil
}

// ImportRow is one transaction row produced by the import collaborator.
type ImportRow struct {
	Ticker     string    `json:"ticker"`
	AssetClass string    `json:"assetClass"`
	Type       string    `json:"type,omitempty"`
	Quantity   RawAmount `json:"quantity"`
	Price      RawAmount `json:"price"`
	Date       string    `json:"date"`
}

// ImportRowError reports why a row was rejected.
type ImportRowError struct {
	Row    int    `json:"row"`
	Ticker string `json:"ticker,omitempty"`
	Error  string `json:"error"`
}

// ImportResult summarises a partial-success bulk import.
type ImportResult struct {
	Accepted int              `json:"accepted"`
	Tickers  []string         `json:"tickers"`
	Errors   []ImportRowError `json:"errors"`
}
