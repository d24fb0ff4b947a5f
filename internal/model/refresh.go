package model

import "time"

// RefreshOutcome says what happened to a refresh request.
type RefreshOutcome string

const (
	RefreshCompleted       RefreshOutcome = "completed"
	RefreshSkippedBusy     RefreshOutcome = "skipped_busy"
	RefreshSkippedDebounce RefreshOutcome = "skipped_debounce"
	RefreshDiscardedStale  RefreshOutcome = "discarded_stale"
	RefreshFailed          RefreshOutcome = "failed"
)

// RefreshResult reports one refresh request.
type RefreshResult struct {
	Outcome    RefreshOutcome `json:"outcome"`
	Trigger    string         `json:"trigger"`
	Generation uint64         `json:"generation"`
	Updated    []string       `json:"updated"`
	Missing    []string       `json:"missing"`
	Duration   time.Duration  `json:"duration"`
	Error      string         `json:"error,omitempty"`
}

// RefreshStatus is the orchestrator state exposed to clients.
type RefreshStatus struct {
	Loading       bool       `json:"loading"`
	Generation    uint64     `json:"generation"`
	LastRefreshAt *time.Time `json:"lastRefreshAt,omitempty"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
}
