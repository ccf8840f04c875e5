package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rescue-coordination-system/internal/application"
	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// CampaignHandler обробляє HTTP-запити, пов'язані з рятувальними кампаніями
type CampaignHandler struct {
	campaignService *application.CampaignService
	archive         ports.CampaignArchive
}

// NewCampaignHandler створює новий CampaignHandler
func NewCampaignHandler(campaignService *application.CampaignService, archive ports.CampaignArchive) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		archive:         archive,
	}
}

// RegisterRoutes реєструє маршрути для CampaignHandler
func (h *CampaignHandler) RegisterRoutes(r chi.Router) {
	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", h.ListCampaigns)
		r.Post("/", h.CreateCampaign)
		r.Get("/stats", h.CampaignStats)
		r.Get("/archive", h.ListArchivedCampaigns)
		r.Get("/archive/*", h.GetArchivedCampaign)
		r.Get("/{id}", h.GetCampaign)
		r.Put("/{id}/status", h.UpdateCampaignStatus)
		r.Post("/{id}/assign", h.AssignCampaign)
		r.Post("/{id}/nodes/{nodeId}/assign", h.AssignNode)
		r.Post("/{id}/nodes/{nodeId}/rescued", h.MarkNodeRescued)
		r.Post("/{id}/resolve", h.ResolveCampaign)
		r.Post("/{id}/notes", h.AddNote)
	})
}

type nodeSeedRequest struct {
	DeviceID string          `json:"device_id"`
	Location domain.Location `json:"location"`
}

// CreateCampaign обробляє POST /campaigns.
// Кампанія створюється або з вибраних тривог, або з вибраних пристроїв.
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name           string                     `json:"name"`
		AlertIDs       []uuid.UUID                `json:"alert_ids"`
		DeviceIDs      []string                   `json:"device_ids"`
		RescuerIDs     []string                   `json:"rescuer_ids"`
		AlertDeviceMap map[string]nodeSeedRequest `json:"alert_device_map"`
		DeviceLoc      map[string]domain.Location `json:"device_locations"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	var campaign *domain.Campaign
	var err error

	switch {
	case len(request.AlertIDs) > 0:
		seeds := make(map[uuid.UUID]application.NodeSeed, len(request.AlertDeviceMap))
		for key, seed := range request.AlertDeviceMap {
			alertID, parseErr := uuid.Parse(key)
			if parseErr != nil {
				http.Error(w, "Invalid alert ID in alert_device_map", http.StatusBadRequest)
				return
			}
			seeds[alertID] = application.NodeSeed{DeviceID: seed.DeviceID, Location: seed.Location}
		}
		campaign, err = h.campaignService.CreateFromAlerts(ctx, request.Name, request.AlertIDs, request.RescuerIDs, seeds)

	case len(request.DeviceIDs) > 0:
		campaign, err = h.campaignService.CreateFromDevices(ctx, request.Name, request.DeviceIDs, request.RescuerIDs, request.DeviceLoc)

	default:
		http.Error(w, "Campaign requires at least one alert or device", http.StatusBadRequest)
		return
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, campaign)
}

// ListCampaigns обробляє GET /campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var campaigns []*domain.Campaign
	var err error

	switch {
	case r.URL.Query().Get("rescuer_id") != "":
		campaigns, err = h.campaignService.ListByRescuer(ctx, r.URL.Query().Get("rescuer_id"))
	case r.URL.Query().Get("status") != "":
		campaigns, err = h.campaignService.ListByStatus(ctx, domain.CampaignStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("active") == "true":
		campaigns, err = h.campaignService.ListActive(ctx)
	default:
		campaigns, err = h.campaignService.List(ctx)
	}

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign обробляє GET /campaigns/{id}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	campaign, err := h.campaignService.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// UpdateCampaignStatus обробляє PUT /campaigns/{id}/status
func (h *CampaignHandler) UpdateCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	campaign, err := h.campaignService.UpdateStatus(r.Context(), id,
		domain.CampaignStatus(request.Status), request.Note, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// AssignCampaign обробляє POST /campaigns/{id}/assign
func (h *CampaignHandler) AssignCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		RescuerIDs []string `json:"rescuer_ids"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(request.RescuerIDs) == 0 {
		http.Error(w, "At least one rescuer is required", http.StatusBadRequest)
		return
	}

	campaign, err := h.campaignService.AssignCampaign(r.Context(), id, request.RescuerIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// AssignNode обробляє POST /campaigns/{id}/nodes/{nodeId}/assign
func (h *CampaignHandler) AssignNode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		RescuerIDs []string `json:"rescuer_ids"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	campaign, err := h.campaignService.AssignNode(r.Context(), id, chi.URLParam(r, "nodeId"), request.RescuerIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// MarkNodeRescued обробляє POST /campaigns/{id}/nodes/{nodeId}/rescued
func (h *CampaignHandler) MarkNodeRescued(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		SurvivorsFound int `json:"survivors_found"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actor := actorFromRequest(r)
	campaign, err := h.campaignService.MarkNodeRescued(r.Context(), id, chi.URLParam(r, "nodeId"), actor.ID, request.SurvivorsFound)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// ResolveCampaign обробляє POST /campaigns/{id}/resolve
func (h *CampaignHandler) ResolveCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		Note string `json:"note"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	actor := actorFromRequest(r)
	campaign, err := h.campaignService.ResolveCampaign(r.Context(), id, actor.DisplayName, request.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// AddNote обробляє POST /campaigns/{id}/notes
func (h *CampaignHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid campaign ID", http.StatusBadRequest)
		return
	}

	var request struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if request.Content == "" {
		http.Error(w, "Note content is required", http.StatusBadRequest)
		return
	}

	actor := actorFromRequest(r)
	campaign, err := h.campaignService.AddNote(r.Context(), id, request.Content, actor.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// ListArchivedCampaigns обробляє GET /campaigns/archive
func (h *CampaignHandler) ListArchivedCampaigns(w http.ResponseWriter, r *http.Request) {
	keys, err := h.archive.ListArchived(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"keys": keys})
}

// GetArchivedCampaign обробляє GET /campaigns/archive/{objectKey}.
// Ключ об'єкта містить слеші, тому маршрут використовує wildcard.
func (h *CampaignHandler) GetArchivedCampaign(w http.ResponseWriter, r *http.Request) {
	objectKey := chi.URLParam(r, "*")
	if objectKey == "" {
		http.Error(w, "Object key is required", http.StatusBadRequest)
		return
	}

	campaign, err := h.archive.FetchArchived(r.Context(), objectKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

// CampaignStats обробляє GET /campaigns/stats
func (h *CampaignHandler) CampaignStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.campaignService.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
