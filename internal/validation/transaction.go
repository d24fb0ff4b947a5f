package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

const maxTickerLength = 20

// NormalizeTicker trims and uppercases a ticker and checks its characters.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if len(t) > maxTickerLength {
		return "", fmt.Errorf("ticker must be at most %d characters", maxTickerLength)
	}
	for _, r := range t {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(".^=-", r):
		default:
			return "", fmt.Errorf("ticker contains invalid character %q", r)
		}
	}
	return t, nil
}

// dateLayouts are tried in order. Broker exports use DD/MM/YYYY.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDate parses a YYYY-MM-DD or DD/MM/YYYY calendar date.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD or DD/MM/YYYY format")
}

// ParseAmount parses a strictly positive decimal. A comma is accepted as the
// decimal separator when no dot is present.
func ParseAmount(raw model.RawAmount) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return decimal.Zero, fmt.Errorf("is required")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be numeric")
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("must be positive")
	}
	return d, nil
}

// ParseTransactionType accepts BUY or SELL in any case. Empty means BUY.
func ParseTransactionType(raw string) (model.TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "BUY", "COMPRA":
		return model.Buy, nil
	case "SELL", "VENDA":
		return model.Sell, nil
	default:
		return "", fmt.Errorf("invalid type: %s", raw)
	}
}

// TransactionFields is the raw user input for one transaction.
type TransactionFields struct {
	Ticker     string
	AssetClass string
	Type       string
	Quantity   model.RawAmount
	Price      model.RawAmount
	Date       string
}

// ParsedTransaction is validated input ready for the ledger.
type ParsedTransaction struct {
	Ticker     string
	AssetClass model.AssetClass
	Input      model.TransactionInput
}

// ParseTransaction validates every field and reports all problems at once.
//
// Required fields:
//   - ticker: letters, digits and . ^ = - only
//   - assetClass: a supported class or one of its aliases
//   - quantity, price: strictly positive numbers
//   - date: YYYY-MM-DD or DD/MM/YYYY
//
// The type defaults to BUY.
func ParseTransaction(in TransactionFields) (ParsedTransaction, error) {
	errs := fields{}
	var out ParsedTransaction
	var err error

	if out.Ticker, err = NormalizeTicker(in.Ticker); err != nil {
		errs.add("ticker", err.Error())
	}
	if out.AssetClass, err = model.ParseAssetClass(in.AssetClass); err != nil {
		errs.add("assetClass", err.Error())
	}
	if out.Input.Type, err = ParseTransactionType(in.Type); err != nil {
		errs.add("type", err.Error())
	}
	if out.Input.Quantity, err = ParseAmount(in.Quantity); err != nil {
		errs.add("quantity", "quantity "+err.Error())
	}
	if out.Input.Price, err = ParseAmount(in.Price); err != nil {
		errs.add("price", "price "+err.Error())
	}
	if out.Input.Date, err = ParseDate(in.Date); err != nil {
		errs.add("date", err.Error())
	}

	if err := errs.err(); err != nil {
		return ParsedTransaction{}, err
	}
	return out, nil
}

// ParseImportRow validates one row produced by the transaction import collaborator.
func ParseImportRow(row model.ImportRow) (ParsedTransaction, error) {
	return ParseTransaction(TransactionFields{
		Ticker:     row.Ticker,
		AssetClass: row.AssetClass,
		Type:       row.Type,
		Quantity:   row.Quantity,
		Price:      row.Price,
		Date:       row.Date,
	})
}

// ValidateTransactionInput re-checks already typed input at the ledger boundary.
func ValidateTransactionInput(ticker string, class model.AssetClass, in model.TransactionInput) error {
	errs := fields{}

	if _, err := NormalizeTicker(ticker); err != nil {
		errs.add("ticker", err.Error())
	}
	if !class.Valid() {
		errs.add("assetClass", fmt.Sprintf("unknown asset class %q", class))
	}
	if in.Type != model.Buy && in.Type != model.Sell {
		errs.add("type", fmt.Sprintf("invalid type: %s", in.Type))
	}
	if !in.Quantity.IsPositive() {
		errs.add("quantity", "quantity must be positive")
	}
	if !in.Price.IsPositive() {
		errs.add("price", "price must be positive")
	}
	if in.Date.IsZero() {
		errs.add("date", "date is required")
	}

	return errs.err()
}
