package model

// InsightLevel classifies an insight for display.
type InsightLevel string

const (
	InsightWarning InsightLevel = "WARNING"
	InsightSuccess InsightLevel = "SUCCESS"
	InsightInfo    InsightLevel = "INFO"
)

// Insight is a short textual observation about the portfolio.
type Insight struct {
	Level   InsightLevel `json:"level"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
}

// InsightReport bundles the rule-based insights with an optional narrative.
type InsightReport struct {
	Insights  []Insight     `json:"insights"`
	Rebalance RebalancePlan `json:"rebalance"`
	Narrative string        `json:"narrative,omitempty"`
}

// RebalanceCandidate is one position of the rebalancing plan.
type RebalanceCandidate struct {
	Ticker        string  `json:"ticker"`
	Invested      float64 `json:"invested"`
	Profit        float64 `json:"profit"`
	MarketValue   float64 `json:"marketValue"`
	ProfitPercent float64 `json:"profitPercent"`
	// SuggestedSale is set for winners: the value to realise.
	SuggestedSale float64 `json:"suggestedSale,omitempty"`
	// ContributionShare is set for laggards: the percentage of new money to direct to it.
	ContributionShare float64 `json:"contributionShare,omitempty"`
}

// RebalancePlan pairs positions to trim with positions to reinforce.
type RebalancePlan struct {
	Winners  []RebalanceCandidate `json:"winners"`
	Laggards []RebalanceCandidate `json:"laggards"`
}
