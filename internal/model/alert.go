package model

// AlertKind says whether the alert waits for the price to fall to a buy
// target or rise to a sell target.
type AlertKind string

const (
	AlertBuy  AlertKind = "BUY"
	AlertSell AlertKind = "SELL"
)

// Alert is a user defined price target.
type Alert struct {
	ID     string    `json:"id"`
	Ticker string    `json:"ticker"`
	Target float64   `json:"target"`
	Kind   AlertKind `json:"kind"`
}

// AlertStatus is an alert evaluated against the latest known price.
type AlertStatus struct {
	Alert
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
	Progress     float64  `json:"progress"`
	Triggered    bool     `json:"triggered"`
}
