package valuation

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

func equity(ticker string, price float64, pe, pb, roe *float64) model.Position {
	return model.Position{
		Ticker:         ticker,
		AssetClass:     model.DomesticEquity,
		CurrentPrice:   price,
		AverageCost:    decimal.NewFromFloat(price),
		PriceEarnings:  pe,
		PriceToBook:    pb,
		ReturnOnEquity: roe,
	}
}

func reit(ticker string, price float64, pb, dy *float64) model.Position {
	return model.Position{
		Ticker:        ticker,
		AssetClass:    model.REITFund,
		CurrentPrice:  price,
		AverageCost:   decimal.NewFromFloat(price),
		PriceToBook:   pb,
		DividendYield: dy,
	}
}

// TestEngine_Evaluate_Scenarios pins the reference scenarios.
//
// WHY: These are the worked examples the ranking is checked against; a
// regression here changes every recommendation shown to the user.
func TestEngine_Evaluate_Scenarios(t *testing.T) {
	engine := NewEngine()

	t.Run("equity with P/E 10 and P/B 1.5 is a BUY", func(t *testing.T) {
		rec := engine.Evaluate(equity("WEGE3", 100, model.Float(10), model.Float(1.5), nil))

		assert.InDelta(t, 100*math.Sqrt(1.5), rec.FairValue, 1e-9)
		assert.InDelta(t, 122.47, rec.FairValue, 0.01)
		assert.InDelta(t, 18.35, rec.MarginOfSafetyPercent, 0.01)
		assert.Equal(t, model.BuyTier, rec.Tier)
		assert.Contains(t, rec.Justification, "18.4%")
	})

	t.Run("income fund with P/B 0.80 is at least a BUY", func(t *testing.T) {
		rec := engine.Evaluate(reit("HGLG11", 100, model.Float(0.80), model.Float(9)))

		assert.InDelta(t, 125, rec.FairValue, 1e-9)
		assert.InDelta(t, 20, rec.MarginOfSafetyPercent, 1e-9)
		assert.Equal(t, model.BuyTier, rec.Tier)
		assert.InDelta(t, 150, rec.CeilingPrice, 1e-9)
	})

	t.Run("deep discount with confirmation is a STRONG_BUY", func(t *testing.T) {
		p := equity("BBAS3", 10, model.Float(2), model.Float(0.5), nil)
		p.AverageCost = decimal.NewFromInt(20)

		rec := engine.Evaluate(p)

		assert.Greater(t, rec.MarginOfSafetyPercent, 50.0)
		assert.Equal(t, model.StrongBuy, rec.Tier)
		assert.InDelta(t, 50, rec.CostBasisGapPercent, 1e-9)
		assert.Contains(t, rec.Justification, "average cost")
	})

	t.Run("strong buy without cost gap omits the cost remark", func(t *testing.T) {
		rec := engine.Evaluate(equity("BBAS3", 10, model.Float(2), model.Float(0.5), nil))

		assert.Equal(t, model.StrongBuy, rec.Tier)
		assert.NotContains(t, rec.Justification, "average cost")
	})

	t.Run("expensive equity is CAUTION", func(t *testing.T) {
		rec := engine.Evaluate(equity("MGLU3", 100, model.Float(30), model.Float(5), nil))

		assert.Less(t, rec.MarginOfSafetyPercent, -5.0)
		assert.Equal(t, model.Caution, rec.Tier)
	})

	t.Run("equity without multiples falls back to ROE", func(t *testing.T) {
		rec := engine.Evaluate(equity("ITUB4", 100, nil, model.Float(2), model.Float(20)))

		assert.InDelta(t, 120, rec.FairValue, 1e-9)
		assert.Equal(t, model.BuyTier, rec.Tier)
	})
}

// TestEngine_MissingRatios checks that unknown ratios never act as zero.
//
// WHY: A missing P/E treated as zero would either divide by zero or flag a
// stock as absurdly cheap.
func TestEngine_MissingRatios(t *testing.T) {
	engine := NewEngine()

	t.Run("no ratios values at current price", func(t *testing.T) {
		rec := engine.Evaluate(equity("XPTO4", 50, nil, nil, nil))

		assert.InDelta(t, 50, rec.FairValue, 1e-9)
		assert.InDelta(t, 0, rec.MarginOfSafetyPercent, 1e-9)
		assert.Equal(t, model.Hold, rec.Tier)
		assert.Zero(t, rec.CeilingPrice)
		assert.Contains(t, rec.Note, "n/a")
	})

	t.Run("income fund without P/B never takes the P/B buy rule", func(t *testing.T) {
		rec := engine.Evaluate(reit("KNRI11", 100, nil, model.Float(12)))

		assert.InDelta(t, 100, rec.FairValue, 1e-9)
		assert.Equal(t, model.Hold, rec.Tier)
	})

	t.Run("zero P/E is not a valid multiple", func(t *testing.T) {
		withZero := engine.Evaluate(equity("XPTO4", 50, model.Float(0), model.Float(1), nil))
		withNil := engine.Evaluate(equity("XPTO4", 50, nil, model.Float(1), nil))

		assert.Equal(t, withNil.FairValue, withZero.FairValue)
	})

	t.Run("fundamentals are echoed untouched", func(t *testing.T) {
		rec := engine.Evaluate(equity("XPTO4", 50, model.Float(8), nil, nil))

		require.NotNil(t, rec.Fundamentals.PriceEarnings)
		assert.Nil(t, rec.Fundamentals.PriceToBook)
	})
}

// TestClassify_SignProperty sweeps a grid of inputs.
//
// WHY: A positive margin must always mean fair value above price, and no
// position trading more than 5% above fair value may be recommended as a buy.
func TestClassify_SignProperty(t *testing.T) {
	engine := NewEngine()
	ratios := []*float64{nil, model.Float(-2), model.Float(0.3), model.Float(0.9), model.Float(1.5), model.Float(4), model.Float(12), model.Float(40)}
	prices := []float64{0.5, 10, 100}

	for _, class := range []model.AssetClass{model.DomesticEquity, model.REITFund, model.ForeignEquity} {
		for _, pe := range ratios {
			for _, pb := range ratios {
				for _, roe := range ratios {
					for _, price := range prices {
						p := equity("GRID", price, pe, pb, roe)
						p.AssetClass = class

						rec := engine.Evaluate(p)
						name := fmt.Sprintf("%s pe=%v pb=%v roe=%v price=%v", class, deref(pe), deref(pb), deref(roe), price)

						if rec.MarginOfSafetyPercent > 0 {
							assert.Greater(t, rec.FairValue, rec.CurrentPrice, name)
						}
						if rec.MarginOfSafetyPercent < -5 {
							assert.NotEqual(t, model.BuyTier, rec.Tier, name)
							assert.NotEqual(t, model.StrongBuy, rec.Tier, name)
						}
					}
				}
			}
		}
	}
}

func deref(v *float64) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%g", *v)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		margin  float64
		costGap float64
		income  bool
		pb      *float64
		want    model.Tier
	}{
		{"large margin", 60, 0, false, nil, model.StrongBuy},
		{"boundary 50 is not strong", 50, 0, false, nil, model.BuyTier},
		{"buy at 5", 5, 0, false, nil, model.BuyTier},
		{"hold at -5", -5, 0, false, nil, model.Hold},
		{"caution below -5", -5.01, 0, false, nil, model.Caution},
		{"income P/B 0.95 buys with negative margin", -3, 0, true, model.Float(0.95), model.BuyTier},
		{"income P/B 0.96 does not", -3, 0, true, model.Float(0.96), model.Hold},
		{"equity P/B rule does not apply", -3, 0, false, model.Float(0.5), model.Hold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.margin, tt.costGap, tt.income, tt.pb))
		})
	}
}

func TestEngine_Rank(t *testing.T) {
	engine := NewEngine()
	positions := []model.Position{
		equity("BBB3", 100, nil, nil, nil),
		equity("CHEAP3", 100, model.Float(5), model.Float(1), nil),
		equity("AAA3", 100, nil, nil, nil),
		equity("PRICY3", 100, model.Float(40), model.Float(6), nil),
	}

	ranked := engine.Rank(positions)

	require.Len(t, ranked, 4)
	tickers := make([]string, len(ranked))
	for i, r := range ranked {
		tickers[i] = r.Ticker
	}
	assert.Equal(t, "CHEAP3,AAA3,BBB3,PRICY3", strings.Join(tickers, ","))

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].MarginOfSafetyPercent, ranked[i].MarginOfSafetyPercent)
	}

	assert.Empty(t, engine.Rank(nil))
}

func TestEngine_CeilingPrice(t *testing.T) {
	assert.InDelta(t, 150, NewEngine().CeilingPrice(100, model.Float(9)), 1e-9)
	assert.InDelta(t, 112.5, NewEngine(WithTargetYield(0.08)).CeilingPrice(100, model.Float(9)), 1e-9)
	assert.Zero(t, NewEngine().CeilingPrice(100, nil))
	assert.Zero(t, NewEngine().CeilingPrice(100, model.Float(0)))
}

func TestMarginOfSafety(t *testing.T) {
	assert.Zero(t, MarginOfSafety(0, 10))
	assert.Zero(t, MarginOfSafety(-5, 10))
	assert.InDelta(t, 50, MarginOfSafety(20, 10), 1e-9)
	assert.InDelta(t, -100, MarginOfSafety(10, 20), 1e-9)
}
