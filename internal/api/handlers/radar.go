package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// RadarHandler serves recommendations and projections.
type RadarHandler struct {
	radar *service.RadarService
}

// NewRadarHandler creates a new RadarHandler.
func NewRadarHandler(radar *service.RadarService) *RadarHandler {
	return &RadarHandler{
		radar: radar,
	}
}

// Radar handles GET requests for the ranked recommendations.
//
// Endpoint: GET /api/radar
// Response: 200 OK with array of Recommendation, best margin of safety first
func (h *RadarHandler) Radar(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.radar.Rank())
}

// Projection handles GET requests for the 90-day projection of one position.
// If the price history cannot be fetched the projection is still returned
// with historyError set.
//
// Endpoint: GET /api/radar/{ticker}/projection
// Response: 200 OK with Projection
// Error: 404 Not Found if no position is held for the ticker
func (h *RadarHandler) Projection(w http.ResponseWriter, r *http.Request) {
	projection, err := h.radar.Projection(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveHistory.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, projection)
}
