package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
)

// DividendTotals returns the net dividends received per ticker.
type DividendTotals interface {
	NetByTicker(ctx context.Context) (map[string]decimal.Decimal, error)
}

// PortfolioFilter narrows the aggregation to one asset class and/or one ticker.
// Zero values match everything.
type PortfolioFilter struct {
	AssetClass model.AssetClass
	Ticker     string
}

func (f PortfolioFilter) match(p model.Position) bool {
	if f.AssetClass != "" && p.AssetClass != f.AssetClass {
		return false
	}
	if f.Ticker != "" && p.Ticker != normalizeTicker(f.Ticker) {
		return false
	}
	return true
}

// Evolution periods.
const (
	PeriodAll      = "ALL"
	PeriodMonth    = "1M"
	PeriodSemester = "6M"
	PeriodYear     = "1Y"
)

var periodBuckets = map[string]int{
	PeriodAll:      0,
	PeriodMonth:    1,
	PeriodSemester: 6,
	PeriodYear:     12,
}

// AggregatorService derives portfolio totals from the ledger and the dividend store.
type AggregatorService struct {
	ledger    *LedgerService
	dividends DividendTotals
}

// NewAggregatorService creates an AggregatorService. dividends may be nil,
// in which case returns exclude dividends.
func NewAggregatorService(ledger *LedgerService, dividends DividendTotals) *AggregatorService {
	return &AggregatorService{
		ledger:    ledger,
		dividends: dividends,
	}
}

// Summary totals the filtered positions. Dividends only count for tickers that
// are still held. Allocation is sorted by value, largest first; the per-position
// rows by return, best first.
func (s *AggregatorService) Summary(ctx context.Context, filter PortfolioFilter) (model.PortfolioSummary, error) {
	net := map[string]decimal.Decimal{}
	if s.dividends != nil {
		var err error
		if net, err = s.dividends.NetByTicker(ctx); err != nil {
			return model.PortfolioSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveDividends, err)
		}
	}

	summary := model.PortfolioSummary{
		Allocation: []model.AllocationSlice{},
		Positions:  []model.Profitability{},
	}
	byClass := make(map[model.AssetClass]float64)

	for _, p := range s.ledger.Positions() {
		if !filter.match(p) {
			continue
		}

		invested := p.InvestedCapital.InexactFloat64()
		dividends := net[p.Ticker].InexactFloat64()
		gain := p.MarketValue + dividends - invested

		row := model.Profitability{
			Ticker:      p.Ticker,
			AssetClass:  p.AssetClass,
			Invested:    invested,
			MarketValue: p.MarketValue,
			Dividends:   dividends,
			TotalGain:   gain,
		}
		if invested > 0 {
			row.ReturnPercent = gain / invested * 100
		}
		summary.Positions = append(summary.Positions, row)

		summary.TotalInvested += invested
		summary.TotalMarketValue += p.MarketValue
		summary.TotalDividends += dividends
		byClass[p.AssetClass] += p.MarketValue
	}

	summary.TotalProfit = summary.TotalMarketValue - summary.TotalInvested
	if summary.TotalInvested > 0 {
		summary.ReturnPercent = summary.TotalProfit / summary.TotalInvested * 100
		summary.ReturnWithDividendsPercent = (summary.TotalProfit + summary.TotalDividends) / summary.TotalInvested * 100
	}

	for class, value := range byClass {
		slice := model.AllocationSlice{
			AssetClass: class,
			Label:      class.Label(),
			Value:      value,
		}
		if summary.TotalMarketValue > 0 {
			slice.Percent = value / summary.TotalMarketValue * 100
		}
		summary.Allocation = append(summary.Allocation, slice)
	}
	sort.Slice(summary.Allocation, func(i, j int) bool {
		a, b := summary.Allocation[i], summary.Allocation[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.AssetClass < b.AssetClass
	})

	sort.SliceStable(summary.Positions, func(i, j int) bool {
		return summary.Positions[i].ReturnPercent > summary.Positions[j].ReturnPercent
	})

	return summary, nil
}

// Evolution builds the cumulative monthly value series. Each transaction
// contributes its quantity at the position's current price to the month it
// happened in; SELL transactions contribute negatively. The period keeps only
// the last N months of the cumulative series.
func (s *AggregatorService) Evolution(period string, filter PortfolioFilter) ([]model.EvolutionPoint, error) {
	if period == "" {
		period = PeriodAll
	}
	keep, ok := periodBuckets[period]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
	}

	monthly := make(map[string]float64)
	for _, p := range s.ledger.Positions() {
		if !filter.match(p) {
			continue
		}
		for _, tx := range p.Transactions {
			value := tx.Quantity.InexactFloat64() * p.CurrentPrice
			if tx.Type == model.Sell {
				value = -value
			}
			monthly[tx.Date.UTC().Format("2006-01")] += value
		}
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]model.EvolutionPoint, 0, len(months))
	cumulative := 0.0
	for _, m := range months {
		cumulative += monthly[m]
		points = append(points, model.EvolutionPoint{Month: m, Value: cumulative})
	}

	if keep > 0 && len(points) > keep {
		points = points[len(points)-keep:]
	}
	return points, nil
}
