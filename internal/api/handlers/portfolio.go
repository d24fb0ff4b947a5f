package handlers

import (
	"net/http"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// PortfolioHandler serves the portfolio-wide aggregates.
type PortfolioHandler struct {
	aggregator *service.AggregatorService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(aggregator *service.AggregatorService) *PortfolioHandler {
	return &PortfolioHandler{
		aggregator: aggregator,
	}
}

// Summary handles GET requests for portfolio totals, allocation and per-position returns.
//
// Endpoint: GET /api/portfolio/summary?assetClass=&ticker=
// Response: 200 OK with PortfolioSummary
// Error: 400 Bad Request if a filter is invalid
// Error: 500 Internal Server Error if dividends cannot be read
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := request.ParsePortfolioFilters(q.Get("assetClass"), q.Get("ticker"), "")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	summary, err := h.aggregator.Summary(r.Context(), filters.Filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to build portfolio summary", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Evolution handles GET requests for the monthly cumulative value series.
//
// Endpoint: GET /api/portfolio/evolution?period=ALL|1M|6M|1Y&assetClass=&ticker=
// Response: 200 OK with array of EvolutionPoint
// Error: 400 Bad Request if the period or a filter is invalid
func (h *PortfolioHandler) Evolution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := request.ParsePortfolioFilters(q.Get("assetClass"), q.Get("ticker"), q.Get("period"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	points, err := h.aggregator.Evolution(filters.Period, filters.Filter)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}
