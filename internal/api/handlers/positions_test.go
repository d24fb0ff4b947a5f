package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/testutil"
)

func TestPositionHandler_AddTransaction(t *testing.T) {
	setupHandler := func(t *testing.T) (*PositionHandler, *service.LedgerService) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		ledger := testutil.NewTestLedgerService(t, db)
		return NewPositionHandler(ledger), ledger
	}

	t.Run("creates the position on first purchase", func(t *testing.T) {
		handler, ledger := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/positions/wege3/transactions",
			request.CreateTransactionRequest{AssetClass: "ACAO", Quantity: "10", Price: "40", Date: "2025-03-01"},
			map[string]string{"ticker": "wege3"})
		w := httptest.NewRecorder()

		handler.AddTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		p, err := ledger.Position("WEGE3")
		if err != nil {
			t.Fatalf("Expected position to exist, got %v", err)
		}
		if p.Quantity.String() != "10" {
			t.Errorf("Expected quantity 10, got %s", p.Quantity)
		}
	})

	t.Run("returns 400 for an invalid body", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodPost, "/api/positions/WEGE3/transactions",
			map[string]string{"ticker": "WEGE3"})
		w := httptest.NewRecorder()

		handler.AddTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestPositionHandler_Position(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ledger := testutil.NewTestLedgerService(t, db)
	handler := NewPositionHandler(ledger)
	testutil.NewTransaction("BBDC4").Build(t, ledger)

	t.Run("returns the position", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/positions/BBDC4", map[string]string{"ticker": "BBDC4"})
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var p model.Position
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&p)

		if len(p.Transactions) != 1 {
			t.Errorf("Expected 1 transaction, got %d", len(p.Transactions))
		}
	})

	t.Run("returns 404 for a ticker that is not held", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/positions/ABEV3", map[string]string{"ticker": "ABEV3"})
		w := httptest.NewRecorder()

		handler.Position(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}
