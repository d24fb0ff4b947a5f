package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-radar/internal/repository"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/valuation"
)

// NewTestLedgerService returns an empty ledger persisted to db.
func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		repository.NewPositionRepository(db),
		zerolog.Nop(),
	)
}

// NewTestRefreshService returns an orchestrator over ledger and gateway. Pass
// options to shorten the debounce window or the safety timeout.
func NewTestRefreshService(t *testing.T, ledger *service.LedgerService, gateway service.QuoteGateway, opts ...service.RefreshOption) *service.RefreshService {
	t.Helper()

	refresher := service.NewRefreshService(ledger, gateway, zerolog.Nop(), opts...)
	ledger.SetRefreshScheduler(refresher)
	t.Cleanup(refresher.Wait)
	return refresher
}

func NewTestDividendService(t *testing.T, db *sql.DB) *service.DividendService {
	t.Helper()

	return service.NewDividendService(
		repository.NewDividendRepository(db),
		zerolog.Nop(),
	)
}

// NewTestAlertService returns an alert service over db. gateway may be nil.
func NewTestAlertService(t *testing.T, db *sql.DB, ledger *service.LedgerService, gateway service.QuoteGateway) *service.AlertService {
	t.Helper()

	return service.NewAlertService(
		repository.NewAlertRepository(db),
		ledger,
		gateway,
		zerolog.Nop(),
	)
}

func NewTestRadarService(t *testing.T, ledger *service.LedgerService, gateway service.QuoteGateway) *service.RadarService {
	t.Helper()

	return service.NewRadarService(ledger, valuation.NewEngine(), gateway, zerolog.Nop())
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"scheduled_refresh": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a unique domestic-style ticker for testing.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("PETR")
//	// Returns: "PETRK7Q4"
func MakeTicker(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(3) + "4"
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
