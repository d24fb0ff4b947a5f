package handlers

import (
	"net/http"

	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/model"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// RefreshHandler exposes the price refresh orchestrator.
type RefreshHandler struct {
	refresher *service.RefreshService
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(refresher *service.RefreshService) *RefreshHandler {
	return &RefreshHandler{
		refresher: refresher,
	}
}

// Refresh handles POST requests that run a refresh and wait for it. A request
// dropped by mutual exclusion or debounce still answers 200 with its outcome.
//
// Endpoint: POST /api/refresh
// Response: 200 OK with RefreshResult
// Error: 502 Bad Gateway with RefreshResult if no quote could be fetched
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result := h.refresher.Refresh(r.Context(), "api")
	if result.Outcome == model.RefreshFailed {
		response.RespondJSON(w, http.StatusBadGateway, result)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Status handles GET requests for the orchestrator state.
//
// Endpoint: GET /api/refresh/status
// Response: 200 OK with RefreshStatus
func (h *RefreshHandler) Status(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.refresher.Status())
}
