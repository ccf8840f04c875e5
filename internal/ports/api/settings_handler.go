package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rescue-coordination-system/pkg/classifier"
)

// SettingsHandler обробляє HTTP-запити налаштувань системи
type SettingsHandler struct {
	threshold *classifier.Threshold
}

// NewSettingsHandler створює новий SettingsHandler
func NewSettingsHandler(threshold *classifier.Threshold) *SettingsHandler {
	return &SettingsHandler{
		threshold: threshold,
	}
}

// RegisterRoutes реєструє маршрути для SettingsHandler
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/threshold", h.GetThreshold)
		r.Put("/threshold", h.SetThreshold)
	})
}

// GetThreshold обробляє GET /settings/threshold
func (h *SettingsHandler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{
		"co2_threshold": h.threshold.Value(),
	})
}

// SetThreshold обробляє PUT /settings/threshold.
// Новий поріг діє для всіх наступних класифікацій одразу.
func (h *SettingsHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CO2Threshold float64 `json:"co2_threshold"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.CO2Threshold <= 0 {
		http.Error(w, "Threshold must be positive", http.StatusBadRequest)
		return
	}

	h.threshold.Set(request.CO2Threshold)

	writeJSON(w, http.StatusOK, map[string]float64{
		"co2_threshold": h.threshold.Value(),
	})
}
