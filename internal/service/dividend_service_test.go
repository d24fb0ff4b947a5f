package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

// TestDividendService_BatchImport tests the partial-success dividend import.
//
// WHY: Like transaction imports, one bad row must not drop the rest. Net
// defaults to gross and the ex date to the pay date when the export omits them.
func TestDividendService_BatchImport(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDividendService(t, db)

	result, err := svc.BatchImport(ctx, []model.DividendImportRow{
		{Ticker: "hglg11", Category: "RENDIMENTO", GrossAmount: "11,00", PayDate: "2025-02-14"},
		{Ticker: "ITSA4", GrossAmount: "5", NetAmount: "4.25", ExDate: "2025-03-01", PayDate: "2025-03-20"},
		{Ticker: "BAD3", GrossAmount: "-1", PayDate: "2025-03-20"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, []string{"HGLG11", "ITSA4"}, result.Tickers)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	testutil.AssertRowCount(t, db, "dividend", 2)

	hglg, err := svc.List(ctx, "HGLG11")
	require.NoError(t, err)
	require.Len(t, hglg, 1)
	assert.Equal(t, "RENDIMENTO", hglg[0].Category)
	assert.Equal(t, "11", hglg[0].NetAmount.String())
	assert.Equal(t, hglg[0].PayDate, hglg[0].ExDate)

	totals, err := svc.NetByTicker(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.25", totals["ITSA4"].String())
}

// TestDividendService_DeleteAndReset tests removing dividends.
//
// WHY: Deleting an unknown id must surface as not found so the API returns 404.
func TestDividendService_DeleteAndReset(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDividendService(t, db)
	d := testutil.NewDividend("TAEE11").Build(t, db)
	testutil.NewDividend("TAEE11").Build(t, db)

	require.NoError(t, svc.Delete(ctx, d.ID))
	testutil.AssertRowCount(t, db, "dividend", 1)

	err := svc.Delete(ctx, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDividendNotFound)

	require.NoError(t, svc.Reset(ctx))
	testutil.AssertRowCount(t, db, "dividend", 0)
}
