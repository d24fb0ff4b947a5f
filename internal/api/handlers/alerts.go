package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-radar/internal/api/request"
	"github.com/ndewijer/portfolio-radar/internal/api/response"
	"github.com/ndewijer/portfolio-radar/internal/apperrors"
	"github.com/ndewijer/portfolio-radar/internal/service"
)

// AlertHandler handles HTTP requests for price alerts.
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Alerts handles GET requests for every alert.
//
// Endpoint: GET /api/alerts
// Response: 200 OK with array of Alert
func (h *AlertHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertService.List(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAlerts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, alerts)
}

// Alert handles GET requests for one alert.
//
// Endpoint: GET /api/alerts/{id}
// Response: 200 OK with Alert
// Error: 400 Bad Request if the id is not a UUID (validated by middleware)
// Error: 404 Not Found if the alert does not exist
func (h *AlertHandler) Alert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alertService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveAlerts.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, alert)
}

// CreateAlert handles POST requests that create a price alert.
//
// Endpoint: POST /api/alerts
// Request Body: CreateAlertRequest (ticker, target, kind)
// Response: 201 Created with Alert
// Error: 400 Bad Request if the body is invalid or validation fails
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAlertRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	alert, err := h.alertService.Create(r.Context(), req.Ticker, req.Target, req.Kind)
	if err != nil {
		response.RespondServiceError(w, err, "failed to create alert")
		return
	}

	response.RespondJSON(w, http.StatusCreated, alert)
}

// DeleteAlert handles DELETE requests for one alert.
//
// Endpoint: DELETE /api/alerts/{id}
// Response: 204 No Content
// Error: 404 Not Found if the alert does not exist
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.alertService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.RespondServiceError(w, err, "failed to delete alert")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Evaluate handles GET requests that compare every alert with current prices.
//
// Endpoint: GET /api/alerts/evaluate
// Response: 200 OK with array of AlertStatus
func (h *AlertHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.alertService.Evaluate(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAlerts.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, statuses)
}
