package request

import "github.com/ndewijer/portfolio-radar/internal/model"

// CreateTransactionRequest represents the request body for adding a transaction
// to the position named in the URL. Quantity and price accept numbers or strings.
type CreateTransactionRequest struct {
	AssetClass string          `json:"assetClass"`
	Type       string          `json:"type"`
	Quantity   model.RawAmount `json:"quantity"`
	Price      model.RawAmount `json:"price"`
	Date       string          `json:"date"`
}

// ImportTransactionsRequest is the body of a bulk transaction import.
type ImportTransactionsRequest struct {
	Rows []model.ImportRow `json:"rows"`
}

// ImportDividendsRequest is the body of a bulk dividend import.
type ImportDividendsRequest struct {
	Rows []model.DividendImportRow `json:"rows"`
}
