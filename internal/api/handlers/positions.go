package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/service"
	"github.com/ndewijer/portfolio-radar/internal/validation"
)

// PositionHandler handles HTTP requests for positions and their transactions.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledger.
type PositionHandler struct {
	ledger *service.LedgerService
}

// NewPositionHandler creates a new PositionHandler with the provided ledger.
func NewPositionHandler(ledger *service.LedgerService) *PositionHandler {
	return &PositionHandler{
		ledger: ledger,
	}
}

// Positions handles GET requests for the ledger snapshot, sorted by ticker.
//
// Endpoint: GET /api/positions
// Response: 200 OK with array of Position
func (h *PositionHandler) Positions(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.ledger.Positions())
}

// Position handles GET requests for one position with its transactions.
//
// Endpoint: GET /api/positions/{ticker}
// Response: 200 OK with Position
// Error: 404 Not Found if no position is held for the ticker
func (h *PositionHandler) Position(w http.ResponseWriter, r *http.Request) {
	position, err := h.ledger.Position(chi.URLParam(r, "ticker"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrievePositions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// AddTransaction handles POST requests that append a transaction to a position,
// creating the position on its first purchase.
//
// Endpoint: POST /api/positions/{ticker}/transactions
// Request Body: CreateTransactionRequest (assetClass, type, quantity, price, date)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if the body is invalid, validation fails or a sale exceeds the held quantity
// Error: 500 Internal Server Error if the ledger cannot persist the change
func (h *PositionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	parsed, err := validation.ParseTransaction(validation.TransactionFields{
		Ticker:     chi.URLParam(r, "ticker"),
		AssetClass: req.AssetClass,
		Type:       req.Type,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Date:       req.Date,
	})
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToAddTransaction.Error())
		return
	}

	tx, err := h.ledger.AddTransaction(r.Context(), parsed.Ticker, parsed.AssetClass, parsed.Input)
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToAddTransaction.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, tx)
}

// RemoveTransaction handles DELETE requests for one transaction. Removing the
// last transaction of a position removes the position.
//
// Endpoint: DELETE /api/positions/{ticker}/transactions/{id}
// Response: 204 No Content
// Error: 400 Bad Request if the id is not a UUID (validated by middleware)
// Error: 404 Not Found if the position or transaction does not exist
// Error: 500 Internal Server Error if removal fails
func (h *PositionHandler) RemoveTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.ledger.RemoveTransaction(r.Context(), chi.URLParam(r, "ticker"), chi.URLParam(r, "id"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRemoveTransaction.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportTransactions handles POST requests with rows from a brokerage export.
// Valid rows are applied and invalid rows are reported; the status is 200 even
// when some rows fail.
//
// Endpoint: POST /api/import/transactions
// Request Body: ImportTransactionsRequest (rows)
// Response: 200 OK with ImportResult
// Error: 400 Bad Request if the body is invalid
func (h *PositionHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportTransactionsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.ledger.BatchImport(r.Context(), req.Rows))
}
