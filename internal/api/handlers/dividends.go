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

// DividendHandler handles HTTP requests for dividend endpoints.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// Dividends handles GET requests for stored dividends, optionally for one ticker.
//
// Endpoint: GET /api/dividends?ticker=
// Response: 200 OK with array of Dividend
// Error: 400 Bad Request if the ticker is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker != "" {
		normalized, err := validation.NormalizeTicker(ticker)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
			return
		}
		ticker = normalized
	}

	dividends, err := h.dividendService.List(r.Context(), ticker)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// ImportDividends handles POST requests with rows from a dividend export.
//
// Endpoint: POST /api/import/dividends
// Request Body: ImportDividendsRequest (rows)
// Response: 200 OK with ImportResult
// Error: 400 Bad Request if the body is invalid
// Error: 500 Internal Server Error if the valid rows cannot be stored
func (h *DividendHandler) ImportDividends(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportDividendsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.dividendService.BatchImport(r.Context(), req.Rows)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// DeleteDividend handles DELETE requests for one dividend.
//
// Endpoint: DELETE /api/dividends/{id}
// Response: 204 No Content
// Error: 400 Bad Request if the id is not a UUID (validated by middleware)
// Error: 404 Not Found if the dividend does not exist
func (h *DividendHandler) DeleteDividend(w http.ResponseWriter, r *http.Request) {
	if err := h.dividendService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.RespondServiceError(w, err, "failed to delete dividend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetDividends handles DELETE requests that remove every dividend.
//
// Endpoint: DELETE /api/dividends
// Response: 204 No Content
func (h *DividendHandler) ResetDividends(w http.ResponseWriter, r *http.Request) {
	if err := h.dividendService.Reset(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to reset dividends", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
