package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rescue-coordination-system/internal/application"
	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// DeviceHandler обробляє HTTP-запити, пов'язані з пристроями
type DeviceHandler struct {
	deviceService *application.DeviceService
	readingCache  ports.ReadingCache
}

// NewDeviceHandler створює новий DeviceHandler
func NewDeviceHandler(deviceService *application.DeviceService, readingCache ports.ReadingCache) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		readingCache:  readingCache,
	}
}

// RegisterRoutes реєструє маршрути для DeviceHandler
func (h *DeviceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", h.ListDevices)
		r.Post("/", h.CreateDevice)
		r.Get("/readings/latest", h.AllLatestReadings)
		r.Get("/{id}", h.GetDevice)
		r.Put("/{id}", h.UpdateDevice)
		r.Delete("/{id}", h.DeleteDevice)
		r.Get("/{id}/readings", h.DeviceReadings)
	})
}

// ListDevices обробляє GET /devices
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Отримання фільтрів з query parameters
	filters := make(map[string]interface{})
	if status := r.URL.Query().Get("status"); status != "" {
		filters["status"] = status
	}

	devices, err := h.deviceService.List(ctx, filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// CreateDevice обробляє POST /devices
func (h *DeviceHandler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Location domain.Location `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.ID == "" {
		http.Error(w, "Device ID is required", http.StatusBadRequest)
		return
	}

	device, err := h.deviceService.Register(r.Context(), &domain.Device{
		ID:       request.ID,
		Name:     request.Name,
		Location: request.Location,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, device)
}

// GetDevice обробляє GET /devices/{id}
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.deviceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, device)
}

// UpdateDevice обробляє PUT /devices/{id}
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name     string           `json:"name"`
		Status   string           `json:"status"`
		Location *domain.Location `json:"location"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	update := &domain.Device{
		ID:     chi.URLParam(r, "id"),
		Name:   request.Name,
		Status: domain.DeviceStatus(request.Status),
	}
	if request.Location != nil {
		update.Location = *request.Location
	}

	device, err := h.deviceService.Update(r.Context(), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, device)
}

// DeleteDevice обробляє DELETE /devices/{id}
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.deviceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeviceReadings обробляє GET /devices/{id}/readings
func (h *DeviceHandler) DeviceReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.readingCache.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// AllLatestReadings обробляє GET /devices/readings/latest
func (h *DeviceHandler) AllLatestReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.readingCache.AllLatest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}
