package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-radar/internal/api"
	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/config"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

type testServer struct {
	handler http.Handler
	gateway *testutil.FakeQuoteGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)
	gw := testutil.NewFakeQuoteGateway()
	dividends := testutil.NewTestDividendService(t, db)

	svc := api.Services{
		System:     testutil.NewTestSystemService(t, db),
		Ledger:     ledger,
		Refresh:    testutil.NewTestRefreshService(t, ledger, gw, service.WithMinInterval(0)),
		Radar:      testutil.NewTestRadarService(t, ledger, gw),
		Aggregator: service.NewAggregatorService(ledger, dividends),
		Dividends:  dividends,
		Insights:   service.NewInsightService(ledger, nil, zerolog.Nop()),
		Alerts:     testutil.NewTestAlertService(t, db, ledger, gw),
	}
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}

	return &testServer{
		handler: api.NewRouter(svc, cfg, zerolog.Nop()),
		gateway: gw,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body, nil)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// TestRouter_PositionLifecycle tests the ledger endpoints end to end.
//
// WHY: A transaction posted to a ticker creates the position, a refresh prices
// it, and deleting the last transaction removes it again. Each step goes
// through routing, parsing and error mapping.
func TestRouter_PositionLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.gateway.WithQuote("PETR4.SA", 38.5, testutil.WithPE(4), testutil.WithPB(1.1))

	w := s.do(t, http.MethodPost, "/api/positions/petr4/transactions", request.CreateTransactionRequest{
		AssetClass: "ACAO",
		Quantity:   "100",
		Price:      "30,50",
		Date:       "2025-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tx model.Transaction
	testutil.DecodeJSON(t, w, &tx)
	assert.Equal(t, model.Buy, tx.Type)

	w = s.do(t, http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result model.RefreshResult
	testutil.DecodeJSON(t, w, &result)
	assert.Equal(t, model.RefreshCompleted, result.Outcome)
	assert.Equal(t, []string{"PETR4"}, result.Updated)

	w = s.do(t, http.MethodGet, "/api/positions/PETR4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p model.Position
	testutil.DecodeJSON(t, w, &p)
	assert.Equal(t, "30.5", p.AverageCost.String())
	assert.InDelta(t, 3850.0, p.MarketValue, 1e-9)

	w = s.do(t, http.MethodGet, "/api/radar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recs []model.Recommendation
	testutil.DecodeJSON(t, w, &recs)
	require.Len(t, recs, 1)
	assert.Equal(t, "PETR4", recs[0].Ticker)

	w = s.do(t, http.MethodGet, "/api/radar/PETR4/projection", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/positions/PETR4/transactions/"+tx.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/positions/PETR4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/positions", nil)
	var positions []model.Position
	testutil.DecodeJSON(t, w, &positions)
	assert.Empty(t, positions)
}

// TestRouter_ErrorMapping tests how service errors become status codes.
//
// WHY: Clients rely on 400 for bad input with a field map, 404 for unknown
// resources and a uniform error body.
func TestRouter_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	t.Run("validation errors carry the field map", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/positions/PETR4/transactions", request.CreateTransactionRequest{
			AssetClass: "BONDS",
			Quantity:   "0",
			Price:      "10",
			Date:       "2025/01/15",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body struct {
			Error   string            `json:"error"`
			Details map[string]string `json:"details"`
		}
		testutil.DecodeJSON(t, w, &body)
		assert.Equal(t, "validation failed", body.Error)
		assert.Contains(t, body.Details, "assetClass")
		assert.Contains(t, body.Details, "quantity")
		assert.Contains(t, body.Details, "date")
	})

	t.Run("overselling is a validation error", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/positions/VALE3/transactions", request.CreateTransactionRequest{
			AssetClass: "DOMESTIC_EQUITY", Quantity: "10", Price: "60", Date: "2025-01-10",
		}).Code)

		w := s.do(t, http.MethodPost, "/api/positions/VALE3/transactions", request.CreateTransactionRequest{
			AssetClass: "DOMESTIC_EQUITY", Type: "SELL", Quantity: "11", Price: "65", Date: "2025-02-10",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/positions/VALE3/transactions/"+testutil.MakeID(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var body response.ErrorResponse
		testutil.DecodeJSON(t, w, &body)
		assert.Equal(t, "transaction not found", body.Error)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/alerts/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown projection", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/radar/NOPE3/projection", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid period", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/portfolio/evolution?period=2W", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("refresh with no quotes", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/refresh", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)

		var result model.RefreshResult
		testutil.DecodeJSON(t, w, &result)
		assert.Equal(t, model.RefreshFailed, result.Outcome)
	})
}

// TestRouter_ImportsAndAggregates tests bulk imports feeding the portfolio views.
//
// WHY: Imports report row errors in a 200 body and the summary, dividends and
// alerts endpoints read what the imports stored.
func TestRouter_ImportsAndAggregates(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/import/transactions", request.ImportTransactionsRequest{
		Rows: []model.ImportRow{
			{Ticker: "HGLG11", AssetClass: "FII", Quantity: "10", Price: "150", Date: "2025-01-10"},
			{Ticker: "ITSA4", AssetClass: "ACAO", Quantity: "100", Price: "9", Date: "2025-02-10"},
			{Ticker: "", AssetClass: "ACAO", Quantity: "1", Price: "1", Date: "2025-02-10"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var imported model.ImportResult
	testutil.DecodeJSON(t, w, &imported)
	assert.Equal(t, 2, imported.Accepted)
	require.Len(t, imported.Errors, 1)
	assert.Equal(t, 3, imported.Errors[0].Row)

	w = s.do(t, http.MethodPost, "/api/import/dividends", request.ImportDividendsRequest{
		Rows: []model.DividendImportRow{
			{Ticker: "HGLG11", GrossAmount: "11", PayDate: "2025-02-14"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/dividends?ticker=hglg11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dividends []model.Dividend
	testutil.DecodeJSON(t, w, &dividends)
	require.Len(t, dividends, 1)

	w = s.do(t, http.MethodGet, "/api/portfolio/summary?assetClass=fii", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary model.PortfolioSummary
	testutil.DecodeJSON(t, w, &summary)
	assert.InDelta(t, 1500.0, summary.TotalInvested, 1e-9)
	assert.InDelta(t, 11.0, summary.TotalDividends, 1e-9)

	w = s.do(t, http.MethodGet, "/api/portfolio/evolution?period=all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var points []model.EvolutionPoint
	testutil.DecodeJSON(t, w, &points)
	assert.Len(t, points, 2)

	w = s.do(t, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report model.InsightReport
	testutil.DecodeJSON(t, w, &report)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, model.InsightWarning, report.Insights[0].Level)

	w = s.do(t, http.MethodPost, "/api/alerts", request.CreateAlertRequest{Ticker: "ITSA4", Target: 8, Kind: "BUY"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var alert model.Alert
	testutil.DecodeJSON(t, w, &alert)

	w = s.do(t, http.MethodGet, "/api/alerts/evaluate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var statuses []model.AlertStatus
	testutil.DecodeJSON(t, w, &statuses)
	require.Len(t, statuses, 1)
	assert.InDelta(t, 8.0/9*100, statuses[0].Progress, 1e-9)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/alerts/"+alert.ID, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/alerts/"+alert.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/alerts/"+alert.ID, nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/dividends", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/refresh/status", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/system/health", nil).Code)
}
