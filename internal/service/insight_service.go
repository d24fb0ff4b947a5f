package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// Insight thresholds, in percent.
const (
	IncomeFundConcentrationLimit = 50.0
	WinnerProfitThreshold        = 30.0
	LaggardProfitThreshold       = 5.0
	WinnerSaleFraction           = 0.2
)

// DomesticCurrency is the ISO code amounts are displayed in.
const DomesticCurrency = money.BRL

// NarrativeGenerator turns a prompt into free text. The Gemini client implements it.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// InsightService produces rule-based observations about the portfolio and,
// when a generator is configured, a narrative commentary.
type InsightService struct {
	ledger    *LedgerService
	generator NarrativeGenerator
	logger    zerolog.Logger
}

// NewInsightService creates an InsightService. generator may be nil.
func NewInsightService(ledger *LedgerService, generator NarrativeGenerator, logger zerolog.Logger) *InsightService {
	return &InsightService{
		ledger:    ledger,
		generator: generator,
		logger:    logger.With().Str("component", "insights").Logger(),
	}
}

// Insights evaluates the rules over the positions of class, or all positions
// when class is empty. A failing narrative is logged and left out.
func (s *InsightService) Insights(ctx context.Context, class model.AssetClass) model.InsightReport {
	var positions []model.Position
	for _, p := range s.ledger.Positions() {
		if class == "" || p.AssetClass == class {
			positions = append(positions, p)
		}
	}

	report := model.InsightReport{
		Insights:  Rules(positions),
		Rebalance: Rebalance(positions),
	}

	if s.generator != nil && len(positions) > 0 {
		text, err := s.generator.Generate(ctx, narrativePrompt(positions, report.Insights))
		if err != nil {
			s.logger.Warn().Err(err).Msg("Narrative generation failed")
		} else {
			report.Narrative = text
		}
	}
	return report
}

// Rules returns the deterministic insights for positions.
func Rules(positions []model.Position) []model.Insight {
	insights := []model.Insight{}

	total := 0.0
	income := 0.0
	for _, p := range positions {
		total += p.MarketValue
		if p.AssetClass.IsIncomeFund() {
			income += p.MarketValue
		}
	}
	if total <= 0 {
		return insights
	}

	if weight := income / total * 100; weight > IncomeFundConcentrationLimit {
		insights = append(insights, model.Insight{
			Level: model.InsightWarning,
			Title: "Real estate fund concentration",
			Message: fmt.Sprintf(
				"%.1f%% of your portfolio (%s) is in real estate funds. Consider diversifying into stocks to reduce sector risk.",
				weight, display(income)),
		})
	}

	winners := 0
	for _, p := range positions {
		if p.ProfitPercent > WinnerProfitThreshold {
			winners++
		}
	}
	if winners > 0 {
		insights = append(insights, model.Insight{
			Level: model.InsightSuccess,
			Title: "Rebalancing opportunity",
			Message: fmt.Sprintf(
				"%d position(s) are more than %.0f%% in profit. Consider taking part of the gains to restore your target weights.",
				winners, WinnerProfitThreshold),
		})
	}

	return insights
}

// Rebalance suggests trimming the winners by a fixed fraction of their value and
// spreading new contributions evenly over the laggards.
func Rebalance(positions []model.Position) model.RebalancePlan {
	plan := model.RebalancePlan{
		Winners:  []model.RebalanceCandidate{},
		Laggards: []model.RebalanceCandidate{},
	}

	var laggards []model.Position
	for _, p := range positions {
		switch {
		case p.ProfitPercent > WinnerProfitThreshold:
			c := candidate(p)
			c.SuggestedSale = p.MarketValue * WinnerSaleFraction
			plan.Winners = append(plan.Winners, c)
		case p.ProfitPercent < LaggardProfitThreshold:
			laggards = append(laggards, p)
		}
	}

	for _, p := range laggards {
		c := candidate(p)
		c.ContributionShare = 100 / float64(len(laggards))
		plan.Laggards = append(plan.Laggards, c)
	}

	sort.SliceStable(plan.Winners, func(i, j int) bool {
		return plan.Winners[i].ProfitPercent > plan.Winners[j].ProfitPercent
	})
	return plan
}

func candidate(p model.Position) model.RebalanceCandidate {
	invested := p.InvestedCapital.InexactFloat64()
	return model.RebalanceCandidate{
		Ticker:        p.Ticker,
		Invested:      invested,
		Profit:        p.MarketValue - invested,
		MarketValue:   p.MarketValue,
		ProfitPercent: p.ProfitPercent,
	}
}

func narrativePrompt(positions []model.Position, insights []model.Insight) string {
	var sb strings.Builder
	sb.WriteString("Portfolio positions:\n")
	for _, p := range positions {
		fmt.Fprintf(&sb, "- %s (%s): %s invested, %s market value, %.1f%% profit",
			p.Ticker, p.AssetClass.Label(),
			display(p.InvestedCapital.InexactFloat64()), display(p.MarketValue), p.ProfitPercent)
		if p.DividendYield != nil {
			fmt.Fprintf(&sb, ", dividend yield %.2f%%", *p.DividendYield)
		}
		if p.PriceToBook != nil {
			fmt.Fprintf(&sb, ", P/B %.2f", *p.PriceToBook)
		}
		if p.PriceEarnings != nil {
			fmt.Fprintf(&sb, ", P/E %.2f", *p.PriceEarnings)
		}
		sb.WriteString("\n")
	}

	if len(insights) > 0 {
		sb.WriteString("\nObservations:\n")
		for _, in := range insights {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", in.Level, in.Title, in.Message)
		}
	}
	return sb.String()
}

// display formats an amount in the domestic currency.
func display(amount float64) string {
	return money.NewFromFloat(amount, DomesticCurrency).Display()
}
