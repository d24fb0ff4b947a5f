package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

// TestRadarService_Rank tests ranking the ledger by margin of safety.
//
// WHY: The radar is ordered so the most undervalued position comes first; a
// position without ratios is valued at its price and has no margin.
func TestRadarService_Rank(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewTestLedgerService(t, testutil.SetupTestDB(t))
	testutil.NewTransaction("BBAS3").WithPrice("25").Build(t, ledger)
	testutil.NewTransaction("ITSA4").WithPrice("9").Build(t, ledger)

	gw := testutil.NewFakeQuoteGateway().
		WithQuote("ITSA4.SA", 10, testutil.WithPE(8), testutil.WithPB(1.5), testutil.WithDY(8)).
		WithQuote("BBAS3.SA", 30)
	refresher := testutil.NewTestRefreshService(t, ledger, gw)
	require.Equal(t, model.RefreshCompleted, refresher.Refresh(ctx, "test").Outcome)

	radar := testutil.NewTestRadarService(t, ledger, gw)
	recs := radar.Rank()

	require.Len(t, recs, 2)
	assert.Equal(t, "ITSA4", recs[0].Ticker)
	assert.Greater(t, recs[0].MarginOfSafetyPercent, 0.0)
	assert.Equal(t, "BBAS3", recs[1].Ticker)
	assert.Zero(t, recs[1].MarginOfSafetyPercent)

	rec, err := radar.Evaluate("itsa4")
	require.NoError(t, err)
	assert.Equal(t, recs[0], rec)

	_, err = radar.Evaluate("NOPE3")
	assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)
}

// TestRadarService_Projection tests the projection with its price history.
//
// WHY: History comes from the quote provider and may fail; the projection is
// computed from ledger data alone and must still be returned.
func TestRadarService_Projection(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewTestLedgerService(t, testutil.SetupTestDB(t))
	testutil.NewTransaction("TAEE11").WithPrice("35").Build(t, ledger)

	history := []model.PricePoint{
		{Date: testutil.Date(2025, 4, 1), Price: 34},
		{Date: testutil.Date(2025, 4, 2), Price: 35},
	}

	t.Run("with history", func(t *testing.T) {
		gw := testutil.NewFakeQuoteGateway().WithHistory("TAEE11", history)
		radar := testutil.NewTestRadarService(t, ledger, gw)

		proj, err := radar.Projection(ctx, "TAEE11")
		require.NoError(t, err)
		assert.Equal(t, history, proj.History)
		assert.Empty(t, proj.HistoryError)
		assert.Len(t, proj.Points, 14)
		assert.InDelta(t, 35.0, proj.LastPrice, 1e-9)
	})

	t.Run("history unavailable", func(t *testing.T) {
		gw := testutil.NewFakeQuoteGateway().WithHistoryError(errors.New("provider down"))
		radar := testutil.NewTestRadarService(t, ledger, gw)

		proj, err := radar.Projection(ctx, "TAEE11")
		require.NoError(t, err)
		assert.Empty(t, proj.History)
		assert.Equal(t, "provider down", proj.HistoryError)
		assert.Len(t, proj.Points, 14)
	})

	t.Run("unknown position", func(t *testing.T) {
		radar := testutil.NewTestRadarService(t, ledger, testutil.NewFakeQuoteGateway())
		_, err := radar.Projection(ctx, "NOPE3")
		assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)
	})
}
