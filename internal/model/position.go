package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the aggregated holding of one ticker, derived from its
// transaction history and enriched with the latest quote.
type Position struct {
	Ticker       string        `json:"ticker"`
	AssetClass   AssetClass    `json:"assetClass"`
	Transactions []Transaction `json:"transactions"`

	Quantity        decimal.Decimal `json:"quantity"`
	AverageCost     decimal.Decimal `json:"averageCost"`
	InvestedCapital decimal.Decimal `json:"investedCapital"`

	// CurrentPrice is in the domestic currency. For foreign-currency assets
	// CurrentPriceOriginalCurrency keeps the instrument-currency quote and
	// FXRateApplied the rate used for the conversion.
	CurrentPrice                 float64  `json:"currentPrice"`
	CurrentPriceOriginalCurrency float64  `json:"currentPriceOriginalCurrency"`
	FXRateApplied                *float64 `json:"fxRateApplied,omitempty"`

	MarketValue   float64 `json:"marketValue"`
	ProfitPercent float64 `json:"profitPercent"`

	PriceEarnings  *float64   `json:"priceEarnings,omitempty"`
	PriceToBook    *float64   `json:"priceToBook,omitempty"`
	DividendYield  *float64   `json:"dividendYield,omitempty"`
	ReturnOnEquity *float64   `json:"returnOnEquity,omitempty"`
	ChangePercent  *float64   `json:"changePercent,omitempty"`
	LastQuoteAt    *time.Time `json:"lastQuoteAt,omitempty"`
}

// Recompute derives quantity, average cost and invested capital from the full
// transaction list, then refreshes the price-dependent fields. It never reads
// the previous derived values, so calling it twice yields the same result.
//
// Average cost only considers BUY transactions. SELL transactions reduce the
// held quantity but do not realise any cost basis.
func (p *Position) Recompute() {
	buyQty := decimal.Zero
	buyCost := decimal.Zero
	sellQty := decimal.Zero

	for _, tx := range p.Transactions {
		switch tx.Type {
		case Buy:
			buyQty = buyQty.Add(tx.Quantity)
			buyCost = buyCost.Add(tx.Cost())
		case Sell:
			sellQty = sellQty.Add(tx.Quantity)
		}
	}

	p.Quantity = buyQty.Sub(sellQty)
	if buyQty.IsPositive() {
		p.AverageCost = buyCost.Div(buyQty)
	} else {
		p.AverageCost = decimal.Zero
	}
	p.InvestedCapital = p.Quantity.Mul(p.AverageCost)

	// Until a quote arrives the position is valued at cost.
	if p.LastQuoteAt == nil {
		p.CurrentPrice = p.AverageCost.InexactFloat64()
	}
	p.RecomputeMarket()
}

// RecomputeMarket refreshes market value and profit from the current price.
func (p *Position) RecomputeMarket() {
	p.MarketValue = p.Quantity.InexactFloat64() * p.CurrentPrice

	avg := p.AverageCost.InexactFloat64()
	if avg == 0 {
		p.ProfitPercent = 0
		return
	}
	p.ProfitPercent = (p.CurrentPrice - avg) / avg * 100
}

// Empty reports whether the position should be removed from the ledger.
func (p *Position) Empty() bool {
	return len(p.Transactions) == 0 || !p.Quantity.IsPositive()
}

// Clone returns a copy that shares no mutable state with p.
func (p Position) Clone() Position {
	out := p
	out.Transactions = append([]Transaction(nil), p.Transactions...)
	out.FXRateApplied = cloneFloat(p.FXRateApplied)
	out.PriceEarnings = cloneFloat(p.PriceEarnings)
	out.PriceToBook = cloneFloat(p.PriceToBook)
	out.DividendYield = cloneFloat(p.DividendYield)
	out.ReturnOnEquity = cloneFloat(p.ReturnOnEquity)
	out.ChangePercent = cloneFloat(p.ChangePercent)
	if p.LastQuoteAt != nil {
		t := *p.LastQuoteAt
		out.LastQuoteAt = &t
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float returns a pointer to v. Handy for optional ratios.
func Float(v float64) *float64 {
	return &v
}
