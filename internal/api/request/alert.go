package request

// CreateAlertRequest represents the request body for creating a price alert.
type CreateAlertRequest struct {
	Ticker string  `json:"ticker"`
	Target float64 `json:"target"`
	Kind   string  `json:"kind"`
}
