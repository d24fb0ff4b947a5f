package handlers

import (
	"net/http"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// InsightHandler serves portfolio insights.
type InsightHandler struct {
	insights *service.InsightService
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insights *service.InsightService) *InsightHandler {
	return &InsightHandler{
		insights: insights,
	}
}

// Insights handles GET requests for rule-based insights, the rebalancing plan
// and, when configured, a narrative commentary.
//
// Endpoint: GET /api/insights?assetClass=
// Response: 200 OK with InsightReport
// Error: 400 Bad Request if the asset class is unknown
func (h *InsightHandler) Insights(w http.ResponseWriter, r *http.Request) {
	filters, err := request.ParsePortfolioFilters(r.URL.Query().Get("assetClass"), "", "")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.insights.Insights(r.Context(), filters.Filter.AssetClass))
}
