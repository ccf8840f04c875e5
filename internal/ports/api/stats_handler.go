package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rescue-coordination-system/internal/application"
)

// StatsHandler обробляє HTTP-запити агрегованих показників
type StatsHandler struct {
	statsService *application.StatsService
}

// NewStatsHandler створює новий StatsHandler
func NewStatsHandler(statsService *application.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// RegisterRoutes реєструє маршрути для StatsHandler
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/dashboard", h.DashboardStats)
		r.Get("/rescuers", h.RescuerPerformance)
	})
}

// DashboardStats обробляє GET /stats/dashboard
func (h *StatsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RescuerPerformance обробляє GET /stats/rescuers
func (h *StatsHandler) RescuerPerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.statsService.RescuerPerformance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, performance)
}
