package valuation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// band maps a ratio to a score using ordered upper bounds.
type band struct {
	below float64
	score float64
}

func scoreBands(v float64, bands []band, floor float64) float64 {
	for _, b := range bands {
		if v < b.below {
			return b.score
		}
	}
	return floor
}

// QualityScore blends fundamental ratios into a score in [0, 1].
//
// Equities weigh ROE (0.40), P/E (0.35) and P/B (0.25). Income funds weigh
// P/B (0.60) and dividend yield (0.40). Unknown ratios are left out of the
// weighted mean rather than scored as zero; with no known ratio the score is 0.
// A non-positive P/E or P/B lands in the lowest band.
func QualityScore(p model.Position) float64 {
	var scores, weights []float64
	add := func(score, weight float64) {
		scores = append(scores, score)
		weights = append(weights, weight)
	}

	if p.AssetClass.IsIncomeFund() {
		if p.PriceToBook != nil {
			add(priceToBookIncomeScore(*p.PriceToBook), 0.6)
		}
		if p.DividendYield != nil {
			add(yieldScore(*p.DividendYield), 0.4)
		}
	} else {
		if p.ReturnOnEquity != nil {
			add(roeScore(*p.ReturnOnEquity), 0.4)
		}
		if p.PriceEarnings != nil {
			add(priceEarningsScore(*p.PriceEarnings), 0.35)
		}
		if p.PriceToBook != nil {
			add(priceToBookEquityScore(*p.PriceToBook), 0.25)
		}
	}

	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, weights)
}

func priceToBookIncomeScore(pb float64) float64 {
	if pb <= 0 {
		return 0.2
	}
	return scoreBands(pb, []band{{0.85, 1}, {1, 0.7}, {1.1, 0.4}}, 0.2)
}

func yieldScore(dy float64) float64 {
	switch {
	case dy > 10:
		return 1
	case dy > 8:
		return 0.7
	case dy > 6:
		return 0.5
	default:
		return 0.3
	}
}

func roeScore(roe float64) float64 {
	switch {
	case roe > 20:
		return 1
	case roe > 15:
		return 0.8
	case roe > 10:
		return 0.6
	case roe > 5:
		return 0.4
	default:
		return 0.2
	}
}

func priceEarningsScore(pe float64) float64 {
	if pe <= 0 {
		return 0.2
	}
	return scoreBands(pe, []band{{8, 1}, {12, 0.8}, {18, 0.6}, {25, 0.4}}, 0.2)
}

func priceToBookEquityScore(pb float64) float64 {
	if pb <= 0 {
		return 0.2
	}
	return scoreBands(pb, []band{{1.5, 1}, {2.5, 0.7}, {4, 0.4}}, 0.2)
}
