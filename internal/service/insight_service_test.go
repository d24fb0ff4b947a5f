package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

type fakeGenerator struct {
	prompt string
	text   string
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func position(ticker string, class model.AssetClass, invested, value float64) model.Position {
	p := model.Position{
		Ticker:          ticker,
		AssetClass:      class,
		InvestedCapital: decimal.NewFromFloat(invested),
		MarketValue:     value,
	}
	if invested > 0 {
		p.ProfitPercent = (value - invested) / invested * 100
	}
	return p
}

// TestRules tests the deterministic portfolio observations.
//
// WHY: The concentration warning and the rebalancing hint are the insights the
// dashboard always shows, with or without a narrative model configured.
func TestRules(t *testing.T) {
	t.Run("real estate concentration", func(t *testing.T) {
		insights := service.Rules([]model.Position{
			position("HGLG11", model.REITFund, 6000, 6000),
			position("ITSA4", model.DomesticEquity, 4000, 4000),
		})

		require.Len(t, insights, 1)
		assert.Equal(t, model.InsightWarning, insights[0].Level)
		assert.Contains(t, insights[0].Message, "60.0%")
		assert.Contains(t, insights[0].Message, "R$")
	})

	t.Run("winners suggest rebalancing", func(t *testing.T) {
		insights := service.Rules([]model.Position{
			position("WEGE3", model.DomesticEquity, 1000, 1500),
			position("ITSA4", model.DomesticEquity, 1000, 1000),
		})

		require.Len(t, insights, 1)
		assert.Equal(t, model.InsightSuccess, insights[0].Level)
		assert.True(t, strings.HasPrefix(insights[0].Message, "1 position(s)"))
	})

	t.Run("empty portfolio", func(t *testing.T) {
		assert.Empty(t, service.Rules(nil))
	})
}

// TestRebalance tests the winners and laggards plan.
//
// WHY: Winners are trimmed by a fixed share of their value and new money is
// split evenly over laggards, so the suggested figures must follow directly.
func TestRebalance(t *testing.T) {
	plan := service.Rebalance([]model.Position{
		position("WEGE3", model.DomesticEquity, 1000, 1500),
		position("PRIO3", model.DomesticEquity, 1000, 2000),
		position("ITSA4", model.DomesticEquity, 1000, 1020),
		position("MGLU3", model.DomesticEquity, 1000, 600),
		position("BBAS3", model.DomesticEquity, 1000, 1100),
	})

	require.Len(t, plan.Winners, 2)
	assert.Equal(t, "PRIO3", plan.Winners[0].Ticker)
	assert.InDelta(t, 400.0, plan.Winners[0].SuggestedSale, 1e-9)
	assert.InDelta(t, 1000.0, plan.Winners[0].Profit, 1e-9)
	assert.Equal(t, "WEGE3", plan.Winners[1].Ticker)

	require.Len(t, plan.Laggards, 2)
	for _, c := range plan.Laggards {
		assert.InDelta(t, 50.0, c.ContributionShare, 1e-9)
	}
}

// TestInsightService_Narrative tests the optional narrative commentary.
//
// WHY: The narrative is a best-effort extra; a failing model must not take the
// rule-based insights down with it.
func TestInsightService_Narrative(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewTestLedgerService(t, testutil.SetupTestDB(t))
	testutil.NewTransaction("KNRI11").WithAssetClass(model.REITFund).WithQuantity("10").WithPrice("140").Build(t, ledger)
	testutil.NewTransaction("WEGE3").WithQuantity("10").WithPrice("40").Build(t, ledger)

	t.Run("generated", func(t *testing.T) {
		gen := &fakeGenerator{text: "Your portfolio leans on real estate funds."}
		svc := service.NewInsightService(ledger, gen, zerolog.Nop())

		report := svc.Insights(ctx, "")
		assert.Equal(t, gen.text, report.Narrative)
		assert.Contains(t, gen.prompt, "KNRI11")
		assert.Contains(t, gen.prompt, "Real estate fund concentration")
		require.Len(t, report.Insights, 1)
	})

	t.Run("generator failure", func(t *testing.T) {
		svc := service.NewInsightService(ledger, &fakeGenerator{err: errors.New("quota exceeded")}, zerolog.Nop())

		report := svc.Insights(ctx, "")
		assert.Empty(t, report.Narrative)
		assert.Len(t, report.Insights, 1)
	})

	t.Run("class filter", func(t *testing.T) {
		gen := &fakeGenerator{text: "ok"}
		svc := service.NewInsightService(ledger, gen, zerolog.Nop())

		report := svc.Insights(ctx, model.DomesticEquity)
		assert.Empty(t, report.Insights)
		assert.NotContains(t, gen.prompt, "KNRI11")
	})
}
