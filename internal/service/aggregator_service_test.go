package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

// TestAggregatorService_Summary tests portfolio totals, allocation and per-position returns.
//
// WHY: The summary is what the dashboard shows. It must add dividends only to
// the return that includes them, fall back to cost for unquoted positions and
// sort allocation by value.
func TestAggregatorService_Summary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)
	dividends := testutil.NewTestDividendService(t, db)

	testutil.NewTransaction("PETR4").WithQuantity("100").WithPrice("30").Build(t, ledger)
	testutil.NewTransaction("HGLG11").WithAssetClass(model.REITFund).WithQuantity("10").WithPrice("150").Build(t, ledger)
	testutil.NewDividend("HGLG11").WithNet("12.5").Build(t, db)
	testutil.NewDividend("HGLG11").WithNet("7.5").Build(t, db)
	testutil.NewDividend("SOLD3").WithNet("99").Build(t, db)

	gw := testutil.NewFakeQuoteGateway().WithQuote("PETR4.SA", 36)
	refresher := testutil.NewTestRefreshService(t, ledger, gw)
	require.Equal(t, model.RefreshCompleted, refresher.Refresh(ctx, "test").Outcome)

	agg := service.NewAggregatorService(ledger, dividends)

	t.Run("totals", func(t *testing.T) {
		summary, err := agg.Summary(ctx, service.PortfolioFilter{})
		require.NoError(t, err)

		// PETR4 quoted at 36, HGLG11 unquoted and valued at cost.
		assert.InDelta(t, 4500.0, summary.TotalInvested, 1e-9)
		assert.InDelta(t, 5100.0, summary.TotalMarketValue, 1e-9)
		assert.InDelta(t, 600.0, summary.TotalProfit, 1e-9)
		assert.InDelta(t, 20.0, summary.TotalDividends, 1e-9)
		assert.InDelta(t, 600.0/4500*100, summary.ReturnPercent, 1e-9)
		assert.InDelta(t, 620.0/4500*100, summary.ReturnWithDividendsPercent, 1e-9)
	})

	t.Run("allocation sorted by value", func(t *testing.T) {
		summary, err := agg.Summary(ctx, service.PortfolioFilter{})
		require.NoError(t, err)

		require.Len(t, summary.Allocation, 2)
		assert.Equal(t, model.DomesticEquity, summary.Allocation[0].AssetClass)
		assert.InDelta(t, 3600.0/5100*100, summary.Allocation[0].Percent, 1e-9)
		assert.Equal(t, model.REITFund, summary.Allocation[1].AssetClass)
		assert.Equal(t, "Real estate funds", summary.Allocation[1].Label)
	})

	t.Run("per position rows sorted by return", func(t *testing.T) {
		summary, err := agg.Summary(ctx, service.PortfolioFilter{})
		require.NoError(t, err)

		require.Len(t, summary.Positions, 2)
		assert.Equal(t, "PETR4", summary.Positions[0].Ticker)
		assert.InDelta(t, 20.0, summary.Positions[0].ReturnPercent, 1e-9)

		hglg := summary.Positions[1]
		assert.Equal(t, "HGLG11", hglg.Ticker)
		assert.InDelta(t, 20.0, hglg.Dividends, 1e-9)
		assert.InDelta(t, 20.0, hglg.TotalGain, 1e-9)
		assert.InDelta(t, 20.0/1500*100, hglg.ReturnPercent, 1e-9)
	})

	t.Run("filter by asset class", func(t *testing.T) {
		summary, err := agg.Summary(ctx, service.PortfolioFilter{AssetClass: model.REITFund})
		require.NoError(t, err)

		require.Len(t, summary.Positions, 1)
		assert.InDelta(t, 1500.0, summary.TotalMarketValue, 1e-9)
		assert.InDelta(t, 100.0, summary.Allocation[0].Percent, 1e-9)
	})

	t.Run("empty portfolio", func(t *testing.T) {
		empty := service.NewAggregatorService(testutil.NewTestLedgerService(t, testutil.SetupTestDB(t)), nil)
		summary, err := empty.Summary(ctx, service.PortfolioFilter{})
		require.NoError(t, err)

		assert.Zero(t, summary.ReturnPercent)
		assert.Empty(t, summary.Allocation)
		assert.NotNil(t, summary.Positions)
	})
}

// TestAggregatorService_Evolution tests the monthly cumulative series.
//
// WHY: Each month's bucket holds that month's transactions valued at today's
// price, accumulated over time. Period filters keep only the last N buckets of
// the already cumulative series.
func TestAggregatorService_Evolution(t *testing.T) {
	ledger := testutil.NewTestLedgerService(t, testutil.SetupTestDB(t))
	agg := service.NewAggregatorService(ledger, nil)

	// Unquoted, so every unit is valued at the average cost of 15.
	testutil.NewTransaction("EVO3").WithQuantity("10").WithPrice("10").WithDate(testutil.Date(2025, 1, 10)).Build(t, ledger)
	testutil.NewTransaction("EVO3").WithQuantity("10").WithPrice("20").WithDate(testutil.Date(2025, 3, 5)).Build(t, ledger)
	testutil.NewTransaction("EVO3").WithQuantity("4").WithPrice("18").WithDate(testutil.Date(2025, 3, 20)).Sell().Build(t, ledger)

	t.Run("all months", func(t *testing.T) {
		points, err := agg.Evolution(service.PeriodAll, service.PortfolioFilter{})
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.Equal(t, "2025-01", points[0].Month)
		assert.InDelta(t, 150.0, points[0].Value, 1e-9)
		assert.Equal(t, "2025-03", points[1].Month)
		assert.InDelta(t, 150.0+150-60, points[1].Value, 1e-9)
	})

	t.Run("last month keeps the cumulative value", func(t *testing.T) {
		points, err := agg.Evolution(service.PeriodMonth, service.PortfolioFilter{})
		require.NoError(t, err)

		require.Len(t, points, 1)
		assert.Equal(t, "2025-03", points[0].Month)
		assert.InDelta(t, 240.0, points[0].Value, 1e-9)
	})

	t.Run("empty period means all", func(t *testing.T) {
		points, err := agg.Evolution("", service.PortfolioFilter{})
		require.NoError(t, err)
		assert.Len(t, points, 2)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := agg.Evolution("2W", service.PortfolioFilter{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod)
	})

	t.Run("ticker filter with no match", func(t *testing.T) {
		points, err := agg.Evolution(service.PeriodYear, service.PortfolioFilter{Ticker: "NOPE3"})
		require.NoError(t, err)
		assert.Empty(t, points)
	})
}
