package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rescue-coordination-system/internal/application"
	"rescue-coordination-system/internal/domain"
)

// AlertHandler обробляє HTTP-запити, пов'язані з тривогами
type AlertHandler struct {
	alertService *application.AlertService
}

// NewAlertHandler створює новий AlertHandler
func NewAlertHandler(alertService *application.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// RegisterRoutes реєструє маршрути для AlertHandler
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", h.ListAlerts)
		r.Post("/report", h.CreateManualReport)
		r.Get("/{id}", h.GetAlert)
		r.Post("/{id}/acknowledge", h.AcknowledgeAlert)
		r.Post("/{id}/resolve", h.ResolveAlert)
		r.Delete("/{id}", h.DeleteAlert)
	})
}

// ListAlerts обробляє GET /alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Отримання фільтрів з query parameters
	filters := make(map[string]interface{})
	if status := r.URL.Query().Get("status"); status != "" {
		filters["status"] = status
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		filters["severity"] = severity
	}
	if deviceID := r.URL.Query().Get("device_id"); deviceID != "" {
		filters["device_id"] = deviceID
	}

	alerts, err := h.alertService.List(ctx, filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

// CreateManualReport обробляє POST /alerts/report
func (h *AlertHandler) CreateManualReport(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Title            string          `json:"title"`
		Description      string          `json:"description"`
		Location         domain.Location `json:"location"`
		SurvivorEstimate *int            `json:"survivor_estimate"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.Title == "" {
		http.Error(w, "Report title is required", http.StatusBadRequest)
		return
	}

	alert, err := h.alertService.CreateManualReport(r.Context(),
		request.Title, request.Description, request.Location,
		request.SurvivorEstimate, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

// GetAlert обробляє GET /alerts/{id}
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	alert, err := h.alertService.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// AcknowledgeAlert обробляє POST /alerts/{id}/acknowledge
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	alert, err := h.alertService.Acknowledge(r.Context(), id, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// ResolveAlert обробляє POST /alerts/{id}/resolve
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	var request struct {
		SurvivorCount *int `json:"survivor_count"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	alert, err := h.alertService.Resolve(r.Context(), id, request.SurvivorCount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

// DeleteAlert обробляє DELETE /alerts/{id}
func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid alert ID", http.StatusBadRequest)
		return
	}

	if err := h.alertService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
