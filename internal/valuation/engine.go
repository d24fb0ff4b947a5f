// Package valuation ranks positions by their margin of safety against a
// model fair value. Everything here is pure: it never fetches prices and
// never mutates the positions it is given.
package valuation

import (
	"fmt"
	"math"
	"sort"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

const (
	// DefaultTargetYield is the minimum acceptable dividend yield used for the ceiling price.
	DefaultTargetYield = 0.06
	// DefaultRiskFreeRate is the annual baseline used by projections.
	DefaultRiskFreeRate = 0.1325

	// grahamConstant bounds a reasonable P/E times P/B product.
	grahamConstant = 22.5
)

// Tier thresholds, in percent of fair value.
const (
	strongBuyMargin     = 50.0
	strongBuyConfirm    = 20.0
	strongBuyCostGap    = 15.0
	buyMargin           = 5.0
	holdMargin          = -5.0
	strongBuyIncomePB   = 0.85
	buyIncomePB         = 0.95
	incomeNoteDiscount  = 0.96
	incomeNoteHighYield = 11.0
)

// Engine computes recommendations and projections.
type Engine struct {
	targetYield  float64
	riskFreeRate float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTargetYield sets the yield, as a fraction, used for the ceiling price.
func WithTargetYield(y float64) Option {
	return func(e *Engine) {
		if y > 0 {
			e.targetYield = y
		}
	}
}

// WithRiskFreeRate sets the annual risk-free rate, as a fraction.
func WithRiskFreeRate(r float64) Option {
	return func(e *Engine) {
		e.riskFreeRate = r
	}
}

// NewEngine creates an Engine with the default constants.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		targetYield:  DefaultTargetYield,
		riskFreeRate: DefaultRiskFreeRate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank evaluates every position and orders the results by margin of safety,
// highest first. Equal margins are ordered by ticker.
func (e *Engine) Rank(positions []model.Position) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(positions))
	for _, p := range positions {
		out = append(out, e.Evaluate(p))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MarginOfSafetyPercent != out[j].MarginOfSafetyPercent {
			return out[i].MarginOfSafetyPercent > out[j].MarginOfSafetyPercent
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

// Evaluate computes the recommendation for one position.
func (e *Engine) Evaluate(p model.Position) model.Recommendation {
	price := p.CurrentPrice
	income := p.AssetClass.IsIncomeFund()

	fair := FairValue(p)
	margin := MarginOfSafety(fair, price)
	costGap := CostBasisGap(p)
	tier := Classify(margin, costGap, income, p.PriceToBook)

	return model.Recommendation{
		Ticker:                p.Ticker,
		AssetClass:            p.AssetClass,
		CurrentPrice:          price,
		FairValue:             fair,
		CeilingPrice:          e.CeilingPrice(price, p.DividendYield),
		MarginOfSafetyPercent: margin,
		CostBasisGapPercent:   costGap,
		QualityScore:          QualityScore(p),
		Tier:                  tier,
		Justification:         Justify(tier, margin, costGap),
		Note:                  Note(p, costGap),
		Fundamentals: model.Fundamentals{
			PriceEarnings:  p.PriceEarnings,
			PriceToBook:    p.PriceToBook,
			DividendYield:  p.DividendYield,
			ReturnOnEquity: p.ReturnOnEquity,
		},
	}
}

// FairValue estimates the intrinsic value of one unit.
//
// Income funds are valued at book value per unit (price / P/B). Equities use
// price * sqrt(22.5 / (P/E * P/B)) when both multiples are positive, and
// otherwise price * (1 + ROE/100). Without any usable ratio the fair value is
// the current price.
func FairValue(p model.Position) float64 {
	price := p.CurrentPrice
	pe, hasPE := positive(p.PriceEarnings)
	pb, hasPB := positive(p.PriceToBook)

	if p.AssetClass.IsIncomeFund() {
		if hasPB {
			return price / pb
		}
		return price
	}

	if hasPE && hasPB {
		return price * math.Sqrt(grahamConstant/(pe*pb))
	}
	if p.ReturnOnEquity != nil {
		return price * (1 + *p.ReturnOnEquity/100)
	}
	return price
}

// CeilingPrice is the highest price at which the current dividend still pays
// the target yield. It is zero when the yield is unknown or not positive.
func (e *Engine) CeilingPrice(price float64, dividendYield *float64) float64 {
	dy, ok := positive(dividendYield)
	if !ok {
		return 0
	}
	dividendPerUnit := price * dy / 100
	return dividendPerUnit / e.targetYield
}

// MarginOfSafety is the distance from price up to fair value, in percent of
// fair value. It is zero when fair value is not positive.
func MarginOfSafety(fairValue, price float64) float64 {
	if fairValue <= 0 {
		return 0
	}
	return (fairValue - price) / fairValue * 100
}

// CostBasisGap is how far the price sits below the position's own average
// cost, in percent. Positive means the position is underwater.
func CostBasisGap(p model.Position) float64 {
	avg := p.AverageCost.InexactFloat64()
	if avg <= 0 {
		return 0
	}
	return (avg - p.CurrentPrice) / avg * 100
}

// Classify assigns a tier. Rules are checked in order and the first match wins.
func Classify(margin, costGap float64, income bool, priceToBook *float64) model.Tier {
	pb, hasPB := positive(priceToBook)

	confirmed := margin >= strongBuyConfirm ||
		(income && hasPB && pb <= strongBuyIncomePB) ||
		(costGap > strongBuyCostGap && margin > 0)

	switch {
	case margin > strongBuyMargin && confirmed:
		return model.StrongBuy
	case margin >= buyMargin || (income && hasPB && pb <= buyIncomePB):
		return model.BuyTier
	case margin >= holdMargin:
		return model.Hold
	default:
		return model.Caution
	}
}

// Justify renders the templated explanation for a tier.
func Justify(tier model.Tier, margin, costGap float64) string {
	switch tier {
	case model.StrongBuy:
		text := fmt.Sprintf("Maximum opportunity: trading %.1f%% below fair value.", margin)
		if costGap > 0 {
			text += fmt.Sprintf(" Buying now lowers your average cost by up to %.1f%%.", costGap)
		}
		return text
	case model.BuyTier:
		return fmt.Sprintf("Favorable: margin of safety of %.1f%%. Reasonable level for gradual contributions.", margin)
	case model.Hold:
		return "Sideways: price is trading close to fair value."
	default:
		return fmt.Sprintf("Downside risk: price is %.1f%% above fair value. Watch the fundamentals before adding.", math.Abs(margin))
	}
}

// Note is the secondary commentary describing what drives the position.
// Unknown ratios are reported as such, never as zero.
func Note(p model.Position, costGap float64) string {
	if p.AssetClass.IsIncomeFund() {
		pb, hasPB := positive(p.PriceToBook)
		switch {
		case hasPB && pb < incomeNoteDiscount:
			return fmt.Sprintf("Asset discount: P/B of %.2f trades below book value. Yield of %s; capital gain expected as price converges to book.",
				pb, percent(p.DividendYield))
		case p.DividendYield != nil && *p.DividendYield > incomeNoteHighYield:
			return fmt.Sprintf("Income focus: strong yield of %s while trading near fair value.", percent(p.DividendYield))
		default:
			return fmt.Sprintf("Maintenance: fund trading at stable levels with a yield of %s.", percent(p.DividendYield))
		}
	}

	pe, hasPE := positive(p.PriceEarnings)
	switch {
	case p.ReturnOnEquity != nil && *p.ReturnOnEquity > 18 && hasPE && pe < 13:
		return fmt.Sprintf("High quality: ROE of %.1f%% with a P/E of %.1f the market has not fully priced in.", *p.ReturnOnEquity, pe)
	case costGap > 10:
		return fmt.Sprintf("Mean reversion: price is %.1f%% below your average cost.", costGap)
	case p.ReturnOnEquity != nil && *p.ReturnOnEquity > 25:
		return fmt.Sprintf("Compounder: exceptional ROE of %.1f%%.", *p.ReturnOnEquity)
	default:
		return fmt.Sprintf("Monitoring: P/E %s and ROE %s, no immediate undervaluation trigger.",
			ratio(p.PriceEarnings), percent(p.ReturnOnEquity))
	}
}

// positive returns the value and true when v is known and strictly positive.
func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}

func percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func ratio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
