package valuation

import (
	"math"
	"time"

	"github.com/ndewijer/portfolio-radar/internal/model"
)

// ProjectionDisclaimer accompanies every projection.
const ProjectionDisclaimer = "Illustrative heuristic built from fundamentals and the gap to fair value. " +
	"It is not a forecast and has not been backtested."

const (
	projectionDays   = 90
	projectionWeeks  = 13
	maxUpside        = 0.15
	maxDownside      = -0.10
	maxConvergence   = 0.12
	convergenceScale = 0.15
	overvaluedGap    = -0.15
	overvaluedCap    = 0.02
)

// QuarterlyReturn is the projected 90-day return for a price, fair value and
// quality score.
//
// It adds half the quality-scaled quarterly risk-free rate to a convergence
// term towards fair value, limited to 12% and scaled by quality. The result
// is clamped to [-10%, +15%] and capped at +2% when the price already sits
// more than 15% above fair value.
func (e *Engine) QuarterlyReturn(price, fairValue, quality float64) float64 {
	if price <= 0 {
		return 0
	}
	target := fairValue
	if target <= 0 {
		target = price
	}

	gap := (target - price) / price
	direction := 1.0
	if gap < 0 {
		direction = -1
	}

	convergence := math.Min(math.Abs(gap)*convergenceScale, maxConvergence)
	adjusted := convergence * (0.5 + quality*0.5)
	base := e.riskFreeRate / 4 * quality * 0.5

	r := base + direction*adjusted
	r = math.Max(maxDownside, math.Min(maxUpside, r))
	if gap < overvaluedGap {
		r = math.Min(r, overvaluedCap)
	}
	return r
}

// Project builds the weekly 90-day path for a position starting at from.
// The first point is the current price at from; thirteen weekly points follow.
func (e *Engine) Project(p model.Position, fairValue float64, from time.Time) model.Projection {
	price := p.CurrentPrice
	quality := QualityScore(p)
	quarterly := e.QuarterlyReturn(price, fairValue, quality)
	daily := math.Pow(1+quarterly, 1.0/projectionDays) - 1

	start := from.UTC().Truncate(24 * time.Hour)
	points := make([]model.ProjectionPoint, 0, projectionWeeks+1)
	points = append(points, model.ProjectionPoint{Date: start, Price: price})
	for week := 1; week <= projectionWeeks; week++ {
		days := week * 7
		points = append(points, model.ProjectionPoint{
			Date:  start.AddDate(0, 0, days),
			Price: price * math.Pow(1+daily, float64(days)),
		})
	}

	return model.Projection{
		Ticker:          p.Ticker,
		LastPrice:       price,
		FairValue:       fairValue,
		QualityScore:    quality,
		QuarterlyReturn: quarterly,
		DailyRate:       daily,
		Points:          points,
		Disclaimer:      ProjectionDisclaimer,
	}
}
