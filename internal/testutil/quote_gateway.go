package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// QuoteTime is the AsOf timestamp of every quote the fake returns.
var QuoteTime = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

// FakeQuoteGateway is an in-memory service.QuoteGateway. It returns scripted
// quotes and histories, counts quote batches and can block a batch through a hook.
//
// Example usage:
//
//	gw := testutil.NewFakeQuoteGateway().
//	    WithQuote("PETR4.SA", 38.50).
//	    WithQuote("AAPL", 190, testutil.WithPE(28))
type FakeQuoteGateway struct {
	mu         sync.Mutex
	quotes     map[string]model.Quote
	history    map[string][]model.PricePoint
	historyErr error
	hook       func(call int)
	requested  [][]string
}

// NewFakeQuoteGateway creates a gateway that knows no symbols.
func NewFakeQuoteGateway() *FakeQuoteGateway {
	return &FakeQuoteGateway{
		quotes:  make(map[string]model.Quote),
		history: make(map[string][]model.PricePoint),
	}
}

// QuoteOption tweaks a scripted quote.
type QuoteOption func(*model.Quote)

func WithPE(v float64) QuoteOption  { return func(q *model.Quote) { q.PriceEarnings = &v } }
func WithPB(v float64) QuoteOption  { return func(q *model.Quote) { q.PriceToBook = &v } }
func WithDY(v float64) QuoteOption  { return func(q *model.Quote) { q.DividendYield = &v } }
func WithROE(v float64) QuoteOption { return func(q *model.Quote) { q.ReturnOnEquity = &v } }

// WithChange sets the daily change percent.
func WithChange(v float64) QuoteOption {
	return func(q *model.Quote) { q.ChangePercent = v }
}

// WithQuote scripts the quote returned under symbol.
func (f *FakeQuoteGateway) WithQuote(symbol string, price float64, opts ...QuoteOption) *FakeQuoteGateway {
	symbol = strings.ToUpper(symbol)
	q := model.Quote{Symbol: symbol, Price: price, AsOf: QuoteTime}
	for _, opt := range opts {
		opt(&q)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = q
	return f
}

// WithoutQuote removes a scripted quote.
func (f *FakeQuoteGateway) WithoutQuote(symbol string) *FakeQuoteGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.quotes, strings.ToUpper(symbol))
	return f
}

// WithHistory scripts the series returned for ticker.
func (f *FakeQuoteGateway) WithHistory(ticker string, points []model.PricePoint) *FakeQuoteGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[strings.ToUpper(ticker)] = points
	return f
}

// WithHistoryError makes every FetchHistory call fail with err.
func (f *FakeQuoteGateway) WithHistoryError(err error) *FakeQuoteGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyErr = err
	return f
}

// OnFetch installs a hook that runs at the start of every quote batch, after
// the batch's answer has been captured. call is 1 for the first batch.
func (f *FakeQuoteGateway) OnFetch(hook func(call int)) *FakeQuoteGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
	return f
}

// Calls returns how many quote batches were requested.
func (f *FakeQuoteGateway) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requested)
}

// Requested returns the tickers of every batch, in call order.
func (f *FakeQuoteGateway) Requested() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.requested))
	for i, r := range f.requested {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// FetchQuotes implements service.QuoteGateway. Like the real provider it
// answers with every scripted quote it knows among the requested symbols,
// matching a requested ticker against the scripted symbol with or without the
// ".SA" suffix.
func (f *FakeQuoteGateway) FetchQuotes(_ context.Context, tickers []string) map[string]model.Quote {
	f.mu.Lock()
	f.requested = append(f.requested, append([]string(nil), tickers...))
	call := len(f.requested)
	hook := f.hook

	out := make(map[string]model.Quote)
	for _, t := range tickers {
		t = strings.ToUpper(t)
		for _, symbol := range []string{t, t + ".SA"} {
			if q, ok := f.quotes[symbol]; ok {
				out[symbol] = q
			}
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return out
}

// FetchHistory implements service.QuoteGateway.
func (f *FakeQuoteGateway) FetchHistory(_ context.Context, ticker, _ string) ([]model.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.historyErr != nil {
		return nil, f.historyErr
	}
	points := f.history[strings.ToUpper(ticker)]
	return append([]model.PricePoint(nil), points...), nil
}
