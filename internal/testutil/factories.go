package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/repository"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// TransactionBuilder provides a fluent interface for adding test transactions
// to a ledger.
//
// Example usage:
//
//	// BUY 100 @ 10.00 of a domestic equity
//	tx := testutil.NewTransaction("XPTO4").Build(t, ledger)
//
//	// Customized transaction
//	tx := testutil.NewTransaction("HGLG11").
//	    WithAssetClass(model.REITFund).
//	    WithQuantity("10").
//	    WithPrice("160.50").
//	    Build(t, ledger)
type TransactionBuilder struct {
	Ticker     string
	AssetClass model.AssetClass
	Type       model.TransactionType
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Date       time.Time
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(ticker string) *TransactionBuilder {
	return &TransactionBuilder{
		Ticker:     ticker,
		AssetClass: model.DomesticEquity,
		Type:       model.Buy,
		Quantity:   decimal.NewFromInt(100),
		Price:      decimal.NewFromInt(10),
		Date:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WithAssetClass sets the asset class used when the position is created.
func (b *TransactionBuilder) WithAssetClass(class model.AssetClass) *TransactionBuilder {
	b.AssetClass = class
	return b
}

// Sell turns the transaction into a SELL.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.Sell
	return b
}

// WithQuantity sets the quantity from a decimal string.
func (b *TransactionBuilder) WithQuantity(q string) *TransactionBuilder {
	b.Quantity = decimal.RequireFromString(q)
	return b
}

// WithPrice sets the unit price from a decimal string.
func (b *TransactionBuilder) WithPrice(p string) *TransactionBuilder {
	b.Price = decimal.RequireFromString(p)
	return b
}

// WithDate sets the trade date.
func (b *TransactionBuilder) WithDate(d time.Time) *TransactionBuilder {
	b.Date = d
	return b
}

// Input returns the builder as ledger input.
func (b *TransactionBuilder) Input() model.TransactionInput {
	return model.TransactionInput{
		Type:     b.Type,
		Quantity: b.Quantity,
		Price:    b.Price,
		Date:     b.Date,
	}
}

// Build adds the transaction to the ledger and returns it.
func (b *TransactionBuilder) Build(t *testing.T, ledger *service.LedgerService) model.Transaction {
	t.Helper()

	tx, err := ledger.AddTransaction(context.Background(), b.Ticker, b.AssetClass, b.Input())
	if err != nil {
		t.Fatalf("Failed to add test transaction: %v", err)
	}
	return tx
}

// ImportRow returns the builder as a raw import row.
func (b *TransactionBuilder) ImportRow() model.ImportRow {
	return model.ImportRow{
		Ticker:     b.Ticker,
		AssetClass: string(b.AssetClass),
		Type:       string(b.Type),
		Quantity:   model.RawAmount(b.Quantity.String()),
		Price:      model.RawAmount(b.Price.String()),
		Date:       b.Date.Format("2006-01-02"),
	}
}

// DividendBuilder provides a fluent interface for creating test dividends.
//
// Example usage:
//
//	d := testutil.NewDividend("HGLG11").WithNet("12.40").Build(t, db)
type DividendBuilder struct {
	ID       string
	Ticker   string
	Category string
	Gross    decimal.Decimal
	Net      decimal.Decimal
	ExDate   time.Time
	PayDate  time.Time
}

// NewDividend creates a DividendBuilder with sensible defaults.
func NewDividend(ticker string) *DividendBuilder {
	return &DividendBuilder{
		ID:       MakeID(),
		Ticker:   ticker,
		Category: "DIVIDEND",
		Gross:    decimal.NewFromInt(10),
		Net:      decimal.NewFromInt(10),
		ExDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		PayDate:  time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WithNet sets the net amount.
func (b *DividendBuilder) WithNet(net string) *DividendBuilder {
	b.Net = decimal.RequireFromString(net)
	return b
}

// WithGross sets the gross amount.
func (b *DividendBuilder) WithGross(gross string) *DividendBuilder {
	b.Gross = decimal.RequireFromString(gross)
	return b
}

// WithPayDate sets the payment date.
func (b *DividendBuilder) WithPayDate(d time.Time) *DividendBuilder {
	b.PayDate = d
	return b
}

// Build creates the dividend in the database and returns it.
func (b *DividendBuilder) Build(t *testing.T, db *sql.DB) model.Dividend {
	t.Helper()

	d := model.Dividend{
		ID:          b.ID,
		Ticker:      b.Ticker,
		Category:    b.Category,
		GrossAmount: b.Gross,
		NetAmount:   b.Net,
		ExDate:      b.ExDate,
		PayDate:     b.PayDate,
	}
	if err := repository.NewDividendRepository(db).InsertDividends(context.Background(), []model.Dividend{d}); err != nil {
		t.Fatalf("Failed to create test dividend: %v", err)
	}
	return d
}

// CreateAlert creates a price alert directly in the database.
func CreateAlert(t *testing.T, db *sql.DB, ticker string, target float64, kind model.AlertKind) model.Alert {
	t.Helper()

	a := model.Alert{ID: MakeID(), Ticker: ticker, Target: target, Kind: kind}
	if err := repository.NewAlertRepository(db).InsertAlert(context.Background(), a); err != nil {
		t.Fatalf("Failed to create test alert: %v", err)
	}
	return a
}

// Date is shorthand for a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
